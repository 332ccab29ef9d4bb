package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generate(m Model, req Request) (string, error) {
	respCh, errCh := m.Generate(context.Background(), req)
	return Collect(context.Background(), respCh, errCh)
}

func TestMockModel_CannedResponse(t *testing.T) {
	m := NewMockModel("mock-1")
	m.AddResponse("hello", "world")

	out, err := generate(m, Request{Messages: []Message{{Role: RoleUser, Text: "hello"}}})
	require.NoError(t, err)
	assert.Equal(t, "world", out)
	assert.Equal(t, Info{Name: "mock-1", Provider: "mock"}, m.Info())
	assert.Len(t, m.Requests(), 1)
}

func TestMockModel_Streaming(t *testing.T) {
	m := NewMockModel("mock-1")

	respCh, errCh := m.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Text: "abc"}},
		Stream:   true,
	})

	var partials int
	var final Response
	for r := range respCh {
		if r.Partial {
			partials++
			continue
		}
		final = r
	}
	require.NoError(t, <-errCh)

	assert.Equal(t, len("Mock response to: abc"), partials)
	assert.Equal(t, "Mock response to: abc", final.Text)
	assert.Equal(t, "stop", final.FinishReason)
}

func TestMockModel_Failure(t *testing.T) {
	m := NewMockModel("mock-1")
	boom := errors.New("boom")
	m.FailWith(boom)

	_, err := generate(m, Request{Messages: []Message{{Role: RoleUser, Text: "x"}}})
	assert.ErrorIs(t, err, boom)
}

func TestMockModel_NoMessages(t *testing.T) {
	_, err := generate(NewMockModel("m"), Request{})
	assert.ErrorContains(t, err, "no messages")
}

func TestCollect_PartialOnly(t *testing.T) {
	respCh := make(chan Response, 2)
	errCh := make(chan error)
	respCh <- Response{Partial: true, Text: "he"}
	respCh <- Response{Partial: true, Text: "llo"}
	close(respCh)
	close(errCh)

	out, err := Collect(context.Background(), respCh, errCh)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestCollect_Empty(t *testing.T) {
	respCh := make(chan Response)
	errCh := make(chan error)
	close(respCh)
	close(errCh)

	_, err := Collect(context.Background(), respCh, errCh)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
