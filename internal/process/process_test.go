package process

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helperEnv = "GO_WANT_HELPER_PROCESS=1"

// helperSpec re-executes the test binary as a child running mode.
func helperSpec(mode string, args ...string) Spec {
	return Spec{
		Name: os.Args[0],
		Args: append([]string{"-test.run=TestHelperProcess", "--", mode}, args...),
		Env:  []string{helperEnv},
	}
}

// TestHelperProcess is not a real test; it is the child side of helperSpec.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) < 2 {
		os.Exit(2)
	}
	switch mode := args[1]; mode {
	case "exit":
		code, _ := strconv.Atoi(args[2])
		os.Exit(code)
	case "pwd":
		wd, _ := os.Getwd()
		fmt.Println(wd)
		os.Exit(0)
	case "env":
		fmt.Println(os.Getenv(args[2]))
		os.Exit(0)
	case "wait-interrupt":
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt)
		fmt.Println("ready")
		select {
		case <-ch:
			os.Exit(0)
		case <-time.After(30 * time.Second):
			os.Exit(3)
		}
	case "hang":
		fmt.Println("ready")
		time.Sleep(30 * time.Second)
		os.Exit(3)
	default:
		os.Exit(2)
	}
}

// startWithPipe starts spec with stdout on an os.Pipe so no copy goroutine
// is involved, and returns a line reader for it.
func startWithPipe(t *testing.T, spec Spec) (Process, *bufio.Scanner) {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	runner := &ExecRunner{Stdout: w}
	p, err := runner.Start(context.Background(), spec)
	_ = w.Close()
	require.NoError(t, err)
	return p, bufio.NewScanner(r)
}

func TestExecRunner_ExitCodes(t *testing.T) {
	for _, code := range []int{0, 1, 3, 42} {
		t.Run(strconv.Itoa(code), func(t *testing.T) {
			p, err := NewExecRunner().Start(context.Background(), helperSpec("exit", strconv.Itoa(code)))
			require.NoError(t, err)
			assert.Positive(t, p.PID())

			exit, err := p.Wait()
			require.NoError(t, err)
			assert.Equal(t, code, exit.Code)
			assert.Empty(t, exit.Signal)
		})
	}
}

func TestExecRunner_DirAndEnv(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	spec := helperSpec("pwd")
	spec.Dir = dir
	p, out := startWithPipe(t, spec)
	require.True(t, out.Scan())
	assert.Equal(t, dir, out.Text())
	_, err = p.Wait()
	require.NoError(t, err)

	spec = helperSpec("env", "DEVLAUNCH_CHILD_VALUE")
	spec.Env = append(spec.Env, "DEVLAUNCH_CHILD_VALUE=hello")
	p, out = startWithPipe(t, spec)
	require.True(t, out.Scan())
	assert.Equal(t, "hello", out.Text())
	_, err = p.Wait()
	require.NoError(t, err)
}

func TestExecRunner_StartFailure(t *testing.T) {
	_, err := NewExecRunner().Start(context.Background(), Spec{Name: "devlaunch-definitely-missing-binary"})
	require.Error(t, err)
}

func TestExecRunner_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewExecRunner().Start(ctx, helperSpec("exit", "0"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestSpecString(t *testing.T) {
	assert.Equal(t, "pnpm run start:local", Spec{Name: "pnpm", Args: []string{"run", "start:local"}}.String())
	assert.Equal(t, "make", Spec{Name: "make"}.String())
}

func TestExitFromState_Nil(t *testing.T) {
	assert.Equal(t, Exit{Code: -1}, ExitFromState(nil))
}
