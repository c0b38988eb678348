package ingest

type Request struct {
	Text   string `json:"text" binding:"required"`
	Source string `json:"source"`
	Title  string `json:"title"`
}

type Response struct {
	Status string `json:"status"`
	DocID  string `json:"doc_id"`
}
