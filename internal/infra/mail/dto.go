package mail

// EbookEmailData feeds the ebook delivery templates.
type EbookEmailData struct {
	FirstName string
	Titles    []string
}

// Attachment is either a local file (Path) or a remote document fetched at send time (URL).
type Attachment struct {
	Filename string
	Path     string
	URL      string
}

type Message struct {
	From        string
	To          string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

type SMTPConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	Secure     bool
	SkipVerify bool
	From       string
}
