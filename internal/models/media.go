package models

import (
	"fmt"
	"time"
)

// MediaType discriminates which media collection a job's subject lives in.
// Kept as a closed enum so dispatch over it is exhaustive.
type MediaType string

const (
	MediaTypeAudio MediaType = "audio"
	MediaTypeVideo MediaType = "video"
)

// Validate returns an error for any value outside the known set.
func (m MediaType) Validate() error {
	switch m {
	case MediaTypeAudio, MediaTypeVideo:
		return nil
	default:
		return fmt.Errorf("unknown media type %q", string(m))
	}
}

// VideoSource identifies where a video record originated.
type VideoSource string

const (
	VideoSourceUpload  VideoSource = "upload"
	VideoSourceYouTube VideoSource = "youtube"
)

// Audio represents an uploaded audio file tracked in the document store.
// The binary itself lives in object storage under ObjectKey.
type Audio struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id" badgerhold:"index"`
	Name      string    `json:"name"`
	ObjectKey string    `json:"object_key"`
	MimeType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	Duration  float64   `json:"duration,omitempty"` // seconds, 0 when unknown
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Video represents an uploaded or imported video. YouTube imports keep the
// remote URL and carry no object key until a local copy exists.
type Video struct {
	ID             string      `json:"id"`
	UserID         string      `json:"user_id" badgerhold:"index"`
	Name           string      `json:"name"`
	Source         VideoSource `json:"source"`
	ObjectKey      string      `json:"object_key,omitempty"`
	RemoteURL      string      `json:"remote_url,omitempty"` // youtube watch URL for imports
	YouTubeID      string      `json:"youtube_id,omitempty"`
	Thumbnail      string      `json:"thumbnail,omitempty"`
	MimeType       string      `json:"mime_type,omitempty"`
	Size           int64       `json:"size,omitempty"`
	Duration       float64     `json:"duration,omitempty"`
	IndexingTaskID string      `json:"indexing_task_id,omitempty" badgerhold:"index"` // TwelveLabs task id
	IndexedVideoID string      `json:"indexed_video_id,omitempty"`                    // TwelveLabs video id, set when indexing completes
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}
