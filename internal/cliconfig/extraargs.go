package cliconfig

import "strings"

// ParseExtraArgs collects --key=value tokens that the primary flag set does
// not own. Plugins receive them as free-form arguments, so a filter can be
// configured from the command line without the CLI knowing its flags up
// front. known reports whether the primary parser owns a flag name.
//
// Unknown flags without '=' and bare positionals are ignored. Scanning
// stops at the "--" terminator.
func ParseExtraArgs(args []string, known func(name string) bool) map[string]string {
	extra := make(map[string]string)
	for _, arg := range args {
		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "--") {
			continue
		}
		body := arg[2:]
		eq := strings.Index(body, "=")
		if eq <= 0 {
			continue
		}
		name, value := body[:eq], body[eq+1:]
		if known(name) {
			continue
		}
		extra[name] = value
	}
	return extra
}
