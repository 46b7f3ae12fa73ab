// Package pdf renders session notes as printable A4 documents.
package pdf

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// LineWidth is the number of characters per printed content line.
const LineWidth = 110

// Document is what gets printed for one note.
type Document struct {
	PatientName string
	SessionDate time.Time
	CreatedAt   time.Time
	IsLocked    bool
	Content     string
}

// Render writes the document as PDF to w.
func Render(w io.Writer, doc Document) error {
	f := fpdf.New("P", "mm", "A4", "")
	f.SetCreationDate(doc.CreatedAt)
	f.SetMargins(15, 20, 15)
	f.SetAutoPageBreak(true, 20)
	tr := f.UnicodeTranslatorFromDescriptor("")
	f.SetTitle("Prontuário", true)
	f.AddPage()

	f.SetFont("Helvetica", "B", 16)
	f.Cell(0, 10, tr("PeegFlow • Prontuário"))
	f.Ln(14)

	f.SetFont("Helvetica", "", 11)
	for _, line := range header(doc) {
		f.Cell(0, 6, tr(line))
		f.Ln(6)
	}
	f.Ln(6)

	f.SetFont("Courier", "", 7.5)
	for _, line := range Wrap(doc.Content, LineWidth) {
		f.Cell(0, 4, tr(line))
		f.Ln(4)
	}

	if f.Err() {
		return fmt.Errorf("render session note: %w", f.Error())
	}
	return f.Output(w)
}

func header(doc Document) []string {
	session := "-"
	if !doc.SessionDate.IsZero() {
		session = doc.SessionDate.Format("02/01/2006")
	}
	locked := "Não"
	if doc.IsLocked {
		locked = "Sim"
	}
	return []string{
		"Paciente: " + doc.PatientName,
		"Data da sessão: " + session,
		"Registrado em: " + doc.CreatedAt.Format("02/01/2006 15:04"),
		"Bloqueado: " + locked,
	}
}

// Wrap splits content into lines and hard-wraps each at width runes.
// Empty content yields a single empty line.
func Wrap(content string, width int) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	var out []string
	for _, line := range strings.Split(content, "\n") {
		runes := []rune(line)
		for len(runes) > width {
			out = append(out, string(runes[:width]))
			runes = runes[width:]
		}
		out = append(out, string(runes))
	}
	return out
}
