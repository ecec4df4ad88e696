package svcmgr

import (
	"fmt"
	"strings"
)

const plistHeader = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
`

// SplitCommand tokenizes a command line into argv, respecting single and
// double quotes. The splitter is a small state machine: an in-quotes flag
// tracks the active quote character and the current token is flushed on
// every unquoted space. Quote characters themselves are not part of the
// token. An unterminated quote consumes the rest of the input.
func SplitCommand(command string) []string {
	var args []string
	var current strings.Builder
	inQuotes := false
	var quote byte

	for i := 0; i < len(command); i++ {
		ch := command[i]
		switch {
		case inQuotes && ch == quote:
			inQuotes = false
		case !inQuotes && (ch == '\'' || ch == '"'):
			inQuotes = true
			quote = ch
		case !inQuotes && (ch == ' ' || ch == '\t'):
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			current.WriteByte(ch)
		}
	}
	if current.Len() > 0 {
		args = append(args, current.String())
	}

	return args
}

// GeneratePlist renders a launchd property list for the descriptor keyed
// by the given label. Deterministic: dict entries appear in a fixed order
// and environment keys are sorted, so the same descriptor always yields
// byte-identical XML.
func GeneratePlist(label string, d Descriptor, logPath string) string {
	var pl strings.Builder

	pl.WriteString(plistHeader)
	writePlistString(&pl, "Label", label)

	argv := SplitCommand(d.Command)
	pl.WriteString("\t<key>ProgramArguments</key>\n\t<array>\n")
	for _, arg := range argv {
		fmt.Fprintf(&pl, "\t\t<string>%s</string>\n", escapeXML(arg))
	}
	pl.WriteString("\t</array>\n")

	if d.Directory != "" {
		writePlistString(&pl, "WorkingDirectory", d.Directory)
	}

	if len(d.Env) > 0 {
		pl.WriteString("\t<key>EnvironmentVariables</key>\n\t<dict>\n")
		for _, key := range sortedKeys(d.Env) {
			fmt.Fprintf(&pl, "\t\t<key>%s</key>\n\t\t<string>%s</string>\n",
				escapeXML(key), escapeXML(d.Env[key]))
		}
		pl.WriteString("\t</dict>\n")
	}

	if d.User != "" {
		writePlistString(&pl, "UserName", d.User)
	}
	if d.Group != "" {
		writePlistString(&pl, "GroupName", d.Group)
	}

	pl.WriteString("\t<key>RunAtLoad</key>\n\t<true/>\n")

	// Restart policy maps onto KeepAlive: always keeps the process alive
	// unconditionally, on-failure only while the last exit was non-zero.
	// launchd cannot distinguish abnormal exits from plain failures, so
	// on-abnormal and never both omit KeepAlive and leave restarting to
	// explicit operator action.
	switch d.Restart {
	case RestartAlways:
		pl.WriteString("\t<key>KeepAlive</key>\n\t<true/>\n")
	case RestartOnFailure:
		pl.WriteString("\t<key>KeepAlive</key>\n\t<dict>\n")
		pl.WriteString("\t\t<key>SuccessfulExit</key>\n\t\t<false/>\n")
		pl.WriteString("\t</dict>\n")
	}

	if d.RestartDelay > 0 {
		fmt.Fprintf(&pl, "\t<key>ThrottleInterval</key>\n\t<integer>%d</integer>\n", d.RestartDelay)
	}

	if l := d.Limits; l != nil && l.MemoryMB > 0 {
		pl.WriteString("\t<key>HardResourceLimits</key>\n\t<dict>\n")
		fmt.Fprintf(&pl, "\t\t<key>MemoryLimit</key>\n\t\t<integer>%d</integer>\n", l.MemoryMB*1024*1024)
		pl.WriteString("\t</dict>\n")
	}
	if l := d.Limits; l != nil && l.OpenFiles > 0 {
		pl.WriteString("\t<key>SoftResourceLimits</key>\n\t<dict>\n")
		fmt.Fprintf(&pl, "\t\t<key>NumberOfFiles</key>\n\t\t<integer>%d</integer>\n", l.OpenFiles)
		pl.WriteString("\t</dict>\n")
	}

	if logPath != "" {
		writePlistString(&pl, "StandardOutPath", logPath)
		writePlistString(&pl, "StandardErrorPath", logPath)
	}

	pl.WriteString("</dict>\n</plist>\n")

	return pl.String()
}

func writePlistString(pl *strings.Builder, key, value string) {
	fmt.Fprintf(pl, "\t<key>%s</key>\n\t<string>%s</string>\n", escapeXML(key), escapeXML(value))
}

// escapeXML escapes special characters for XML
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
