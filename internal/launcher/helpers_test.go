package launcher

import "git.home.luguber.info/inful/devlaunch/internal/buildstate"

func presence(dir, file bool) buildstate.Presence {
	return buildstate.Presence{DirExists: dir, FileExists: file}
}
