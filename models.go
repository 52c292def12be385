package main

// ReasonRequest is the body accepted by POST /reason/{userId}.
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// ReasonResponse is returned for reason reads and writes.
type ReasonResponse struct {
	Reason string `json:"reason"`
	ID     uint64 `json:"id"`
}
