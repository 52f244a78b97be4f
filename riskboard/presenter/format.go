package presenter

import "strings"

const (
	UnknownFormat Format = iota
	TableFormat
	JSONFormat
	CSVFormat
)

var formatStr = []string{
	"UnknownFormat",
	"table",
	"json",
	"csv",
}

var Formats = []Format{
	TableFormat,
	JSONFormat,
	CSVFormat,
}

// Format is an output encoding selectable with -o/--output.
type Format int

func ParseFormat(userStr string) Format {
	switch strings.TrimSpace(strings.ToLower(userStr)) {
	case TableFormat.String():
		return TableFormat
	case JSONFormat.String():
		return JSONFormat
	case CSVFormat.String():
		return CSVFormat
	default:
		return UnknownFormat
	}
}

func (f Format) String() string {
	if int(f) >= len(formatStr) || f < 0 {
		return formatStr[0]
	}
	return formatStr[f]
}

// FormatNames lists the user-facing names of every format.
func FormatNames() []string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = f.String()
	}
	return names
}
