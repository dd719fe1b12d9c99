package transport

import (
	"encoding/base64"
)

// Segment is one piece of a chat message in the array message format.
type Segment struct {
	Type string            `json:"type"`
	Data map[string]string `json:"data"`
}

// Text builds a plain-text segment.
func Text(text string) Segment {
	return Segment{Type: "text", Data: map[string]string{"text": text}}
}

// At builds a mention segment for a user.
func At(userID string) Segment {
	return Segment{Type: "at", Data: map[string]string{"qq": userID}}
}

// ImageBytes builds an inline image segment from raw bytes.
func ImageBytes(data []byte) Segment {
	return Segment{Type: "image", Data: map[string]string{
		"file": "base64://" + base64.StdEncoding.EncodeToString(data),
	}}
}
