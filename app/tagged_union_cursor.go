package app

import (
	"encoding/json"
	"errors"
)

const (
	PostCursorTypeMostRecent PostCursorType = "MOST_RECENT"
	PostCursorTypeDashboard  PostCursorType = "DASHBOARD"
)

var UnknownCursorTypeErr = errors.New("unknown cursor type")

// TaggedUnionCursor is the wire form of a PostCursor: {"cursorType": ..., "cursor": {...}}.
type TaggedUnionCursor struct {
	PostCursor
	CursorType PostCursorType
}

func (tuc *TaggedUnionCursor) UnmarshalJSON(data []byte) error {
	if tuc == nil {
		return nil
	}
	var rawJsonWithType struct {
		CursorType PostCursorType   `json:"cursorType"`
		Raw        *json.RawMessage `json:"cursor"`
	}
	if err := json.Unmarshal(data, &rawJsonWithType); err != nil {
		return err
	}

	tuc.CursorType = rawJsonWithType.CursorType

	var cursorRef PostCursor
	switch rawJsonWithType.CursorType {
	case PostCursorTypeMostRecent:
		cursorRef = &MostRecentCursor{}
	case PostCursorTypeDashboard:
		cursorRef = &DashboardCursor{}
	default:
		return UnknownCursorTypeErr
	}

	if rawJsonWithType.Raw != nil && string(*rawJsonWithType.Raw) != "null" {
		if err := json.Unmarshal(*rawJsonWithType.Raw, cursorRef); err != nil {
			return err
		}
	}

	tuc.PostCursor = cursorRef
	return nil
}

func (tuc *TaggedUnionCursor) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		CursorType PostCursorType `json:"cursorType"`
		Cursor     PostCursor     `json:"cursor"`
	}{tuc.CursorType, tuc.PostCursor})
}
