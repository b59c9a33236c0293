package user

// Principal identifies the authenticated uploader attached to a request.
type Principal struct {
	UserID string
	Email  string
}
