package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"lbs-connect/internal/email"
	"lbs-connect/internal/llm"
	"lbs-connect/internal/profiles"
)

type draftLLM struct {
	inflight atomic.Int32
	peak     atomic.Int32
	fail     map[string]bool
	mu       sync.Mutex
	reqs     []llm.Request
}

func (d *draftLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	n := d.inflight.Add(1)
	defer d.inflight.Add(-1)
	for {
		p := d.peak.Load()
		if n <= p || d.peak.CompareAndSwap(p, n) {
			break
		}
	}
	d.mu.Lock()
	d.reqs = append(d.reqs, req)
	d.mu.Unlock()
	for name := range d.fail {
		if strings.Contains(req.Prompt, " to "+name+",") {
			return "", errors.New("rate limited")
		}
	}
	return "Hi! Coffee?", nil
}

type captureSender struct {
	msgs []email.Message
	err  error
}

func (c *captureSender) Send(_ context.Context, msg email.Message) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	c.msgs = append(c.msgs, msg)
	return "email_1", nil
}

type failingLogs struct{}

func (failingLogs) Insert(context.Context, EmailLog) error { return errors.New("db down") }

func newService(t *testing.T) (*Service, *draftLLM, *captureSender, *MemoryLogRepo) {
	t.Helper()
	repo := profiles.NewMemoryRepo()
	repo.Put(profiles.Profile{UserID: "me", UserType: profiles.Student, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", NetworkingGoal: profiles.GoalExploring, OnboardingCompleted: true})
	repo.Put(profiles.Profile{UserID: "anon", UserType: profiles.Student, Email: "anon@example.com", OnboardingCompleted: true})
	repo.Put(profiles.Profile{UserID: "noemail", UserType: profiles.Student, OnboardingCompleted: true})
	d := &draftLLM{}
	snd := &captureSender{}
	logs := NewMemoryLogRepo()
	return &Service{
		Profiles:    profiles.NewService(repo),
		LLM:         d,
		Sender:      snd,
		Logs:        logs,
		FromAddress: "hello@lbsconnect.test",
	}, d, snd, logs
}

func entries(n int) []Entry {
	year := 2021
	out := make([]Entry, 0, n)
	names := []string{"Grace", "Alan", "Barbara", "Edsger", "Donald", "Frances"}
	for i := 0; i < n; i++ {
		out = append(out, Entry{
			MatchedUserID:  "m" + names[i],
			FirstName:      names[i],
			LastName:       "X",
			LBSProgram:     "MBA",
			GraduationYear: &year,
			Reason:         "Shared <interest> in fintech",
			LinkedInURL:    "https://linkedin.com/in/" + strings.ToLower(names[i]),
		})
	}
	return out
}

func TestSendNothingToSend(t *testing.T) {
	svc, d, snd, _ := newService(t)
	for _, tc := range []struct {
		user    string
		entries []Entry
	}{{"", entries(1)}, {"me", nil}, {"me", []Entry{}}} {
		msg, err := svc.Send(context.Background(), tc.user, tc.entries)
		if err != nil || msg != MessageNothingToSend {
			t.Fatalf("expected no-op, got %q %v", msg, err)
		}
	}
	if len(d.reqs) != 0 || len(snd.msgs) != 0 {
		t.Fatalf("no calls expected")
	}
}

func TestSendBuildsEmailAndLogs(t *testing.T) {
	svc, d, snd, logs := newService(t)

	msg, err := svc.Send(context.Background(), "me", entries(2))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg != "Email sent successfully to ada@example.com" {
		t.Fatalf("unexpected message %q", msg)
	}
	if len(snd.msgs) != 1 {
		t.Fatalf("expected one email, got %d", len(snd.msgs))
	}
	sent := snd.msgs[0]
	if sent.From != "LBS Connect <hello@lbsconnect.test>" || sent.Subject != Subject || sent.To[0] != "ada@example.com" {
		t.Fatalf("unexpected envelope %+v", sent)
	}
	for _, want := range []string{"Hi Ada,", "2 people", "Grace X, MBA 2021", "Hi! Coffee?", "Shared &lt;interest&gt; in fintech"} {
		if !strings.Contains(sent.HTML, want) {
			t.Fatalf("html missing %q", want)
		}
	}
	for _, want := range []string{"Hi Ada,", "Alan X, MBA 2021", "LinkedIn: https://linkedin.com/in/alan", "Suggested message:\nHi! Coffee?", "---"} {
		if !strings.Contains(sent.Text, want) {
			t.Fatalf("text missing %q:\n%s", want, sent.Text)
		}
	}
	if len(d.reqs) != 2 {
		t.Fatalf("expected 2 drafts, got %d", len(d.reqs))
	}
	r := d.reqs[0]
	if r.Model != DefaultMessageModel || r.Temperature != 0.8 || r.MaxTokens != 200 || r.Operation != llm.OpOutreach {
		t.Fatalf("unexpected draft request %+v", r)
	}
	if !strings.Contains(r.Prompt, "from Ada Lovelace") || !strings.Contains(r.Prompt, "Exploring specific industries") {
		t.Fatalf("unexpected prompt %s", r.Prompt)
	}
	got := logs.All()
	if len(got) != 1 || got[0].EmailType != EmailTypeMatchNotification || got[0].Status != "sent" || got[0].MatchCount != 2 {
		t.Fatalf("unexpected logs %+v", got)
	}
}

func TestSendUsesFallbackDraft(t *testing.T) {
	svc, d, snd, _ := newService(t)
	d.fail = map[string]bool{"Alan": true}

	if _, err := svc.Send(context.Background(), "me", entries(2)); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.Contains(snd.msgs[0].Text, "Hi Alan,\n\nI noticed we're both part of the LBS community") {
		t.Fatalf("fallback draft missing:\n%s", snd.msgs[0].Text)
	}
	if !strings.Contains(snd.msgs[0].Text, "Best,\nAda Lovelace") {
		t.Fatalf("fallback must be signed by the sender")
	}
}

func TestSendBoundsDraftConcurrency(t *testing.T) {
	svc, d, _, _ := newService(t)
	if _, err := svc.Send(context.Background(), "me", entries(6)); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if d.peak.Load() > draftConcurrency {
		t.Fatalf("peak concurrency %d exceeds %d", d.peak.Load(), draftConcurrency)
	}
}

func TestSendGreetingFallsBack(t *testing.T) {
	svc, _, snd, _ := newService(t)
	if _, err := svc.Send(context.Background(), "anon", entries(1)); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.Contains(snd.msgs[0].Text, "Hi there,") || !strings.Contains(snd.msgs[0].Text, "found someone") {
		t.Fatalf("unexpected text %s", snd.msgs[0].Text)
	}
}

func TestSendErrors(t *testing.T) {
	svc, _, snd, _ := newService(t)
	if _, err := svc.Send(context.Background(), "ghost", entries(1)); !errors.Is(err, profiles.ErrNotFound) {
		t.Fatalf("expected profiles.ErrNotFound, got %v", err)
	}
	if _, err := svc.Send(context.Background(), "noemail", entries(1)); !errors.Is(err, ErrNoEmail) {
		t.Fatalf("expected ErrNoEmail, got %v", err)
	}
	snd.err = errors.New("resend 500")
	if _, err := svc.Send(context.Background(), "me", entries(1)); err == nil {
		t.Fatalf("expected send failure")
	}
}

func TestSendLogFailureIsNotReturned(t *testing.T) {
	svc, _, _, _ := newService(t)
	svc.Logs = failingLogs{}
	if _, err := svc.Send(context.Background(), "me", entries(1)); err != nil {
		t.Fatalf("log failure must not fail the send: %v", err)
	}
}

func TestProgramLine(t *testing.T) {
	year := 2019
	tests := []struct {
		e    Entry
		want string
	}{
		{Entry{LBSProgram: "MIM", GraduationYear: &year}, "MIM 2019"},
		{Entry{LBSProgram: "MIM"}, "MIM"},
		{Entry{GraduationYear: &year}, "LBS Alumni"},
		{Entry{}, "LBS Alumni"},
	}
	for _, tc := range tests {
		if got := tc.e.ProgramLine(); got != tc.want {
			t.Fatalf("ProgramLine(%+v) = %q, want %q", tc.e, got, tc.want)
		}
	}
}
