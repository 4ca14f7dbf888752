package queue

import (
	"errors"
	"reflect"
	"testing"
)

func TestMessageRoundTrip(t *testing.T) {
	msg := Message{
		Kind:       KindExtractCV,
		UserID:     "user-123",
		CVPath:     "user-123/1700000000000.pdf",
		Notify:     true,
		RequestID:  "request-456",
		EnqueuedAt: "2026-01-30T22:00:00Z",
		Version:    MessageVersion,
	}

	payload, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}

	got, err := DecodeMessage(payload)
	if err != nil {
		t.Fatalf("decode message: %v", err)
	}

	if !reflect.DeepEqual(got, msg) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, msg)
	}
}

func TestMessageValidate(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want error
	}{
		{"extract ok", Message{Kind: KindExtractCV, UserID: "u", CVPath: "u/1.pdf"}, nil},
		{"extract missing user", Message{Kind: KindExtractCV, CVPath: "u/1.pdf"}, ErrMissingUserID},
		{"extract missing path", Message{Kind: KindExtractCV, UserID: "u"}, ErrMissingCVPath},
		{"digest", Message{Kind: KindMatchDigest}, nil},
		{"unknown", Message{Kind: "weekly_report"}, ErrUnknownKind},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.msg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}
