package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/stigoleg/emote-idler/internal/ui"
)

// gen-docs writes shell completions and a man page for the idler flags.

const (
	appName        = "idler"
	appDescription = "Plays a chosen emote once your character has idled long enough."
)

// valueKind says what a flag's argument completes to.
type valueKind int

const (
	valueNone valueKind = iota
	valueFree
	valueFile
	valueDir
	valueChoice
)

type flagDef struct {
	Short   string
	Long    string
	Arg     string
	Desc    string
	Env     string
	Kind    valueKind
	Choices []string
}

// name returns the flag without dashes, preferring the long form.
func (f flagDef) name() string {
	if f.Long != "" {
		return strings.TrimLeft(f.Long, "-")
	}
	return strings.TrimLeft(f.Short, "-")
}

// help is the description shown by completions, with the env var appended.
func (f flagDef) help() string {
	if f.Env == "" {
		return f.Desc
	}
	return f.Desc + " ($" + f.Env + ")"
}

func idlerFlags() []flagDef {
	return []flagDef{
		{Long: "--data-dir", Arg: "<dir>", Desc: "Directory for settings and logs", Env: "IDLER_DATA_DIR", Kind: valueDir},
		{Long: "--sheet", Arg: "<file>", Desc: "Emote sheet, .json or .db/.sqlite (bundled sheet when empty)", Env: "IDLER_SHEET", Kind: valueFile},
		{Long: "--frame", Arg: "<duration>", Desc: "Frame interval of the idle check, e.g. 100ms", Env: "IDLER_FRAME", Kind: valueFree},
		{Long: "--theme", Arg: "<name>", Desc: "Colour theme", Env: "IDLER_THEME", Kind: valueChoice, Choices: ui.ThemeNames()},
		{Long: "--log", Arg: "<file>", Desc: "Log file, relative to the data dir", Env: "IDLER_LOG", Kind: valueFile},
		{Short: "-v", Long: "--version", Desc: "Show version information"},
		{Short: "-h", Long: "--help", Desc: "Show help message"},
	}
}

// completion is one generated script and the file it is written to.
type completion struct {
	path   string
	render func([]flagDef) string
}

var completions = []completion{
	{path: appName + ".bash", render: bashCompletion},
	{path: "_" + appName, render: zshCompletion},
	{path: appName + ".fish", render: fishCompletion},
}

func main() {
	flags := idlerFlags()

	base := filepath.Join("docs", "completions")
	if err := os.MkdirAll(base, 0o755); err != nil {
		log.Fatal(err)
	}
	for _, c := range completions {
		if err := os.WriteFile(filepath.Join(base, c.path), []byte(c.render(flags)), 0o644); err != nil {
			log.Fatalf("writing %s: %v", c.path, err)
		}
	}

	if err := os.MkdirAll("man", 0o755); err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join("man", appName+".1"), []byte(manPage(flags)), 0o644); err != nil {
		log.Fatalf("writing man page: %v", err)
	}
}

func bashCompletion(flags []flagDef) string {
	var words []string
	var cases strings.Builder
	for _, f := range flags {
		for _, n := range []string{f.Short, f.Long} {
			if n != "" {
				words = append(words, n)
			}
		}
		var reply string
		switch f.Kind {
		case valueFile:
			reply = `compgen -f -- "$cur"`
		case valueDir:
			reply = `compgen -d -- "$cur"`
		case valueChoice:
			reply = fmt.Sprintf(`compgen -W "%s" -- "$cur"`, strings.Join(f.Choices, " "))
		default:
			continue
		}
		fmt.Fprintf(&cases, "    %s) COMPREPLY=( $(%s) ); return ;;\n", f.Long, reply)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "_%s() {\n", appName)
	b.WriteString("  local cur=\"${COMP_WORDS[COMP_CWORD]}\" prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("  case \"$prev\" in\n")
	b.WriteString(cases.String())
	b.WriteString("  esac\n")
	fmt.Fprintf(&b, "  COMPREPLY=( $(compgen -W \"%s\" -- \"$cur\") )\n", strings.Join(words, " "))
	b.WriteString("}\n")
	fmt.Fprintf(&b, "complete -F _%s %s\n", appName, appName)
	return b.String()
}

func zshCompletion(flags []flagDef) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#compdef %s\n\n_arguments -s \\\n", appName)
	for i, f := range flags {
		spec := "--" + f.name()
		if f.Short != "" {
			spec = fmt.Sprintf("(%s %s)'{%s,%s}'", f.Short, f.Long, f.Short, f.Long)
		}
		action := ""
		switch f.Kind {
		case valueFree:
			action = ":" + strings.Trim(f.Arg, "<>") + ": "
		case valueFile:
			action = ":file:_files"
		case valueDir:
			action = ":directory:_files -/"
		case valueChoice:
			action = fmt.Sprintf(":%s:(%s)", strings.Trim(f.Arg, "<>"), strings.Join(f.Choices, " "))
		}
		if f.Kind != valueNone {
			spec += "="
		}
		fmt.Fprintf(&b, "  '%s[%s]%s'", spec, strings.ReplaceAll(f.help(), "'", `'\''`), action)
		if i < len(flags)-1 {
			b.WriteString(" \\")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func fishCompletion(flags []flagDef) string {
	var b strings.Builder
	fmt.Fprintf(&b, "complete -c %s -f\n", appName)
	for _, f := range flags {
		args := []string{"complete", "-c", appName}
		if f.Short != "" {
			args = append(args, "-s", strings.TrimLeft(f.Short, "-"))
		}
		if f.Long != "" {
			args = append(args, "-l", f.name())
		}
		switch f.Kind {
		case valueFile, valueDir:
			args = append(args, "-r", "-F")
		case valueChoice:
			args = append(args, "-x", "-a", fmt.Sprintf("%q", strings.Join(f.Choices, " ")))
		case valueFree:
			args = append(args, "-x")
		}
		args = append(args, "-d", fmt.Sprintf("%q", f.help()))
		b.WriteString(strings.Join(args, " ") + "\n")
	}
	return b.String()
}

// roff escapes dashes so man renders them as minus signs.
func roff(s string) string {
	return strings.ReplaceAll(s, "-", `\-`)
}

func manPage(flags []flagDef) string {
	var b strings.Builder
	fmt.Fprintf(&b, ".TH \"%s\" \"1\" \"\" \"emote-idler\" \"User Commands\"\n", strings.ToUpper(appName))
	fmt.Fprintf(&b, ".SH NAME\n%s \\- %s\n", appName, appDescription)
	fmt.Fprintf(&b, ".SH SYNOPSIS\n.B %s\n[\\fIOPTIONS\\fR]\n", appName)
	fmt.Fprintf(&b, ".SH DESCRIPTION\n%s\n", appDescription)

	b.WriteString(".SH OPTIONS\n")
	for _, f := range flags {
		names := roff(strings.Join(nonEmpty(f.Short, f.Long), ", "))
		if f.Arg != "" {
			names += " \\fI" + f.Arg + "\\fR"
		}
		fmt.Fprintf(&b, ".TP\n\\fB%s\\fR\n%s\n", names, f.Desc)
		if len(f.Choices) > 0 {
			fmt.Fprintf(&b, "One of: %s.\n", strings.Join(f.Choices, ", "))
		}
	}

	b.WriteString(".SH ENVIRONMENT\n")
	for _, f := range flags {
		if f.Env != "" {
			fmt.Fprintf(&b, ".TP\n\\fB%s\\fR\nDefault for \\fB%s\\fR.\n", f.Env, roff(f.Long))
		}
	}

	b.WriteString(".SH COMMANDS\n.TP\n\\fB/idler\\fR\nShow or hide the configuration surface.\n")
	b.WriteString(".TP\n\\fB/\\fIcommand\\fR\nAny other line starting with / is sent as chat.\n")

	b.WriteString(".SH EXAMPLES\n")
	for _, ex := range [][2]string{
		{appName, "Start with the bundled emote sheet."},
		{appName + " --sheet emotes.db", "Load emotes from a SQLite sheet."},
		{appName + " --theme contrast", "Use the high-contrast theme."},
	} {
		fmt.Fprintf(&b, ".TP\n\\fB%s\\fR\n%s\n", roff(ex[0]), ex[1])
	}
	b.WriteString(".SH FILES\n.TP\n\\fIidler.json\\fR\nSaved settings, inside the data dir.\n")
	return b.String()
}

func nonEmpty(ss ...string) []string {
	var out []string
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
