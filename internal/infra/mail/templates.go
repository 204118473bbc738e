package mail

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

const EbookSubject = "Vos Ebooks SBC offerts !"

//go:embed templates
var templateFS embed.FS

var (
	ebookText = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/ebooks.txt"))
	ebookHTML = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/ebooks.html"))
)

// RenderEbookEmail returns the plain-text and HTML bodies of the ebook delivery email.
func RenderEbookEmail(data EbookEmailData) (text, html string, err error) {
	var textBody bytes.Buffer
	if err := ebookText.Execute(&textBody, data); err != nil {
		return "", "", fmt.Errorf("render text template: %w", err)
	}

	var htmlBody bytes.Buffer
	if err := ebookHTML.Execute(&htmlBody, data); err != nil {
		return "", "", fmt.Errorf("render html template: %w", err)
	}

	return textBody.String(), htmlBody.String(), nil
}
