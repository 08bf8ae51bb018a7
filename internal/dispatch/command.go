package dispatch

import (
	"strconv"
	"strings"
)

// Command accumulates one CLI invocation as an ordered list of flag tokens.
// Flags render in the order they were added, so the same build sequence
// always yields the same string.
type Command struct {
	path string
	args []string
}

// WithInt appends an integer flag.
func (c *Command) WithInt(name string, v int) *Command {
	c.args = append(c.args, "--"+name, strconv.Itoa(v))
	return c
}

// WithString appends a string flag, quoting the value when it needs it.
func (c *Command) WithString(name, v string) *Command {
	c.args = append(c.args, "--"+name, quote(v))
	return c
}

// WithBool appends a boolean flag with no value.
func (c *Command) WithBool(name string) *Command {
	c.args = append(c.args, "--"+name)
	return c
}

// WithPlaceholder appends a flag whose value the dispatching agent must fill
// in. The placeholder renders as "{varName}" so a forgotten substitution is
// visible in the final command rather than silently wrong.
func (c *Command) WithPlaceholder(name, varName string) *Command {
	c.args = append(c.args, "--"+name, `"{`+varName+`}"`)
	return c
}

// WithFix appends the verification-retry flags: the incremented iteration
// counter and the failure marker the work step keys its fix mode on.
func (c *Command) WithFix(iteration int) *Command {
	return c.WithInt("qr-iteration", iteration).WithBool("qr-fail")
}

// String renders the full command line.
func (c *Command) String() string {
	if len(c.args) == 0 {
		return c.path
	}
	return c.path + " " + strings.Join(c.args, " ")
}

// quote wraps v in double quotes when it contains whitespace or shell-special
// characters, escaping embedded quotes and backslashes. Plain single-token
// values pass through untouched.
func quote(v string) string {
	if v == "" {
		return `""`
	}
	if !strings.ContainsAny(v, " \t\n\"'\\$`") {
		return v
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range v {
		switch r {
		case '"', '\\', '$', '`':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}
