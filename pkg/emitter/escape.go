package emitter

import "strings"

var nixStringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"${", `\${`,
)

// nixString quotes s as a Nix string literal.
func nixString(s string) string {
	return `"` + nixStringEscaper.Replace(s) + `"`
}

var shellEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"$", `\$`,
	"`", "\\`",
)

var nixIndentedEscaper = strings.NewReplacer(
	"''", "'''",
	"${", "''${",
)

// shellPath escapes s so that it can be placed inside a
// double-quoted shell word within a Nix indented string.
func shellPath(s string) string {
	return nixIndentedEscaper.Replace(shellEscaper.Replace(s))
}
