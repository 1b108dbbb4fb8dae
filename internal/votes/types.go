package votes

const (
	Upvote   = "upvote"
	Downvote = "downvote"
)

type Request struct {
	VoteType string `json:"vote_type"`
}

// Result is the counter snapshot after a vote operation.
type Result struct {
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`
	Score     int    `json:"score"`
	YourVote  string `json:"your_vote,omitempty"`
}
