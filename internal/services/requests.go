package services

// ParseRequest asks the host to open an archive. An empty Password means no
// password is supplied.
type ParseRequest struct {
	Path     string
	Password string
}

func (req ParseRequest) HasPassword() bool {
	return req.Password != ""
}
