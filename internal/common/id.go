package common

import (
	"github.com/google/uuid"
)

// Typed identifier prefixes keep collection membership readable in logs
// and storage keys.
func NewAudioID() string {
	return "aud_" + uuid.New().String()
}

func NewVideoID() string {
	return "vid_" + uuid.New().String()
}

func NewDubbingID() string {
	return "dub_" + uuid.New().String()
}

func NewEnhanceID() string {
	return "enh_" + uuid.New().String()
}

func NewDiagnoseID() string {
	return "dia_" + uuid.New().String()
}

func NewInquiryID() string {
	return "inq_" + uuid.New().String()
}
