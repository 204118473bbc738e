package sbc

type checkExistenceRequest struct {
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

type checkExistenceResponse struct {
	Success bool `json:"success"`
	Data    *struct {
		Exists bool `json:"exists"`
	} `json:"data"`
}
