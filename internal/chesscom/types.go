package chesscom

import "fmt"

type archivesResponse struct {
	Archives []string `json:"archives"`
}

// StatusError is a non-2xx response. Terminal errors (4xx other than 429)
// are not retried: the request will keep failing the same way.
type StatusError struct {
	Status int
	URL    string
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chess.com api error: status=%d url=%s body=%s", e.Status, e.URL, e.Body)
}

func (e *StatusError) Terminal() bool {
	return e.Status < 500 && e.Status != 429
}
