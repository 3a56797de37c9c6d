package core

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MayuCoding/DebateAgent/config"
)

func TestNewStorageDefaultsToNoop(t *testing.T) {
	s, err := NewStorage(config.StorageConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.(NoopStorage); !ok {
		t.Fatalf("expected NoopStorage, got %T", s)
	}
}

func TestNewStorageSelectsRedisWhenConfigured(t *testing.T) {
	s, err := NewStorage(config.StorageConfig{
		Redis: config.RedisConfig{Host: "localhost", Port: 6379},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.(*RedisStorage); !ok {
		t.Fatalf("expected *RedisStorage, got %T", s)
	}
	_ = s.Close()
}

func TestNewStorageFallsBackFromUnreachablePostgres(t *testing.T) {
	s, err := NewStorage(config.StorageConfig{
		Postgres: config.PostgresConfig{Host: "127.0.0.1", Port: "1", User: "debater", DBName: "debater"},
		Redis:    config.RedisConfig{Host: "localhost", Port: 6379},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.(*RedisStorage); !ok {
		t.Fatalf("expected fallback to *RedisStorage, got %T", s)
	}
	_ = s.Close()
}

func TestNoopStorageSemantics(t *testing.T) {
	var s Storage = NoopStorage{}
	ctx := context.Background()

	if err := s.SaveRun(ctx, RunRecord{ID: "run-1"}); err != nil {
		t.Fatalf("NoopStorage.SaveRun: %v", err)
	}
	if _, err := s.GetRun(ctx, "run-1"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("NoopStorage.Close: %v", err)
	}
}

func TestRunRecordRoundTrip(t *testing.T) {
	rec := RunRecord{
		ID:             "run-42",
		Submission:     testSubmission(FormatRebuttalParagraphs),
		Format:         FormatRebuttalParagraphs,
		ResponseJSON:   json.RawMessage(`{"response_type":"rebuttal","rebuttal":"x","references":["https://example.edu/a"]}`),
		Rendered:       "rendered text",
		Cost:           0.12,
		TokensUsed:     345,
		ProcessingTime: 2 * time.Second,
		CreatedAt:      time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got RunRecord
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != rec.ID || got.Format != rec.Format || got.Rendered != rec.Rendered {
		t.Fatalf("record mismatch: %+v", got)
	}
	if got.Submission.Motion != rec.Submission.Motion {
		t.Fatalf("submission motion mismatch: %q", got.Submission.Motion)
	}
	if string(got.ResponseJSON) != string(rec.ResponseJSON) {
		t.Fatalf("response payload mismatch: %s", got.ResponseJSON)
	}
	if got.ProcessingTime != rec.ProcessingTime || got.TokensUsed != rec.TokensUsed {
		t.Fatalf("timing fields mismatch: %+v", got)
	}
}

func TestDecodeRunRowPropagatesCorruptSubmission(t *testing.T) {
	rec := RunRecord{ID: "run-7"}
	err := decodeRunRow(&rec, []byte("{not json"), string(FormatPoints), nil, 0)
	if err == nil {
		t.Fatal("expected an error for a corrupt submission blob")
	}
	if !strings.Contains(err.Error(), "run-7") {
		t.Fatalf("error should name the run id, got %v", err)
	}
}

func TestDecodeRunRowFillsFields(t *testing.T) {
	sub, err := json.Marshal(testSubmission(FormatPoints))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	rec := RunRecord{ID: "run-8"}
	respB := []byte(`{"response_type":"points"}`)
	if err := decodeRunRow(&rec, sub, string(FormatPoints), respB, int64(3*time.Second)); err != nil {
		t.Fatalf("decodeRunRow: %v", err)
	}
	if rec.Format != FormatPoints {
		t.Fatalf("format mismatch: %q", rec.Format)
	}
	if string(rec.ResponseJSON) != string(respB) {
		t.Fatalf("response mismatch: %s", rec.ResponseJSON)
	}
	if rec.ProcessingTime != 3*time.Second {
		t.Fatalf("processing time mismatch: %v", rec.ProcessingTime)
	}
	if rec.Submission.Motion == "" {
		t.Fatal("submission not decoded")
	}
}
