package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandListen  Command = "listen"
	CommandDown    Command = "down"
	CommandUp      Command = "up"
	CommandCancel  Command = "cancel"
	CommandStatus  Command = "status"
	CommandResolve Command = "resolve"
	CommandAuth    Command = "auth"
	CommandDevices Command = "devices"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandListen:  {},
	CommandDown:    {},
	CommandUp:      {},
	CommandCancel:  {},
	CommandStatus:  {},
	CommandResolve: {},
	CommandAuth:    {},
	CommandDevices: {},
	CommandDoctor:  {},
	CommandVersion: {},
	CommandHelp:    {},
}

type Parsed struct {
	Command    Command
	ConfigPath string
	ShowHelp   bool
	// Text holds the trailing words of a resolve command.
	Text string
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp

			// resolve consumes the rest of the line as the test utterance.
			if cmd == CommandResolve {
				parsed.Text = strings.TrimSpace(strings.Join(args[i+1:], " "))
				return parsed, nil
			}

			if i != len(args)-1 {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
			}
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] <command>

Commands:
  listen        Run the voice command daemon
  down          Signal hotkey press (start recording)
  up            Signal hotkey release (stop and dispatch)
  cancel        Discard the active recording
  status        Print current daemon state
  resolve TEXT  Resolve TEXT as if it were transcribed, without dispatching
  auth          Run the one-time Spotify authorization flow
  devices       List available input devices
  doctor        Run configuration and environment checks
  version       Print version information
  help          Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/croon/config.jsonc)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
