package usecase

type CreateProspectInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Whatsapp  string `json:"whatsapp"`
	Email     string `json:"email"`
	EbookID   string `json:"ebookId"`
	AdminID   string `json:"adminId,omitempty"`
}

type ListProspectsInput struct {
	AdminID   string
	EbookID   string
	Date      string
	SbcStatus string
}

type UpdateStatusInput struct {
	ProspectID string
	Status     string `json:"status"`
}
