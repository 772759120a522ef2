package models

import "time"

// StatusListResponse is the persisted record as seen by the owner. List is
// base64 encoded by encoding/json.
type StatusListResponse struct {
	OwnerID   string    `json:"owner_id"`
	Purpose   Purpose   `json:"purpose"`
	Size      uint16    `json:"size"`
	Capacity  uint32    `json:"capacity"`
	List      []byte    `json:"list"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReadResponse is the JSON form of a read.
type ReadResponse struct {
	Location uint32 `json:"location"`
	Value    byte   `json:"value"`
}

func ToResponse(l *StatusList) *StatusListResponse {
	return &StatusListResponse{
		OwnerID:   l.OwnerID.String(),
		Purpose:   l.Purpose,
		Size:      l.Size,
		Capacity:  l.Capacity(),
		List:      l.List,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

func ToReadResponse(r ReadResult) *ReadResponse {
	return &ReadResponse{Location: r.Location, Value: r.Value}
}
