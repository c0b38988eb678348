package query

type Request struct {
	Query string `json:"query" binding:"required"`
}
