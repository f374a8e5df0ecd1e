package tonedelay

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

const separator = "##################################################################"

// WriteReport prints the tone list, the tone count and the delay list, each
// section set apart by separator lines.
func WriteReport(w io.Writer, m Melody) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(formatList(m.Tones) + "\n\n")
	bw.WriteString(separator + "\n")
	bw.WriteString(strconv.Itoa(m.ToneCount) + "\n\n")
	bw.WriteString(separator + "\n")
	bw.WriteString(separator + "\n")
	bw.WriteString(formatList(m.Delays) + "\n")
	return bw.Flush()
}

func formatList(values []float64) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range values {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(formatValue(v))
	}
	sb.WriteByte(']')
	return sb.String()
}

// formatValue always keeps a decimal point so that whole numbers read as
// floats: 440 is printed as 440.0.
func formatValue(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
