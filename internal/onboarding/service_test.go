package onboarding

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"lbs-connect/internal/industries"
	"lbs-connect/internal/profiles"
	"lbs-connect/internal/queue"
	"lbs-connect/internal/shared/storage/object"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF")

type recordingStore struct {
	mu   sync.Mutex
	puts map[string][]byte
}

func (s *recordingStore) Put(_ context.Context, key, _ string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.puts == nil {
		s.puts = map[string][]byte{}
	}
	s.puts[key] = data
	return int64(len(data)), nil
}

func (s *recordingStore) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, object.ErrNotFound
}

type recordingQueue struct {
	mu   sync.Mutex
	sent []queue.Message
	err  error
}

func (q *recordingQueue) Send(_ context.Context, msg queue.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sent = append(q.sent, msg)
	return q.err
}

type recordingPresigner struct {
	keys []string
}

func (p *recordingPresigner) PresignPut(_ context.Context, key, _ string, _ int64, ttl time.Duration) (object.PresignedUpload, error) {
	p.keys = append(p.keys, key)
	return object.PresignedUpload{URL: "https://bucket.local/" + key, Key: key, ExpiresIn: ttl}, nil
}

type fixture struct {
	svc      *Service
	store    *recordingStore
	queue    *recordingQueue
	profiles *profiles.Service
}

var fixedNow = time.UnixMilli(1700000000000)

func newFixture(t *testing.T) fixture {
	t.Helper()
	ps := profiles.NewService(profiles.NewMemoryRepo())
	store := &recordingStore{}
	q := &recordingQueue{}
	return fixture{
		svc: &Service{
			Profiles: ps,
			Store:    store,
			Queue:    q,
			Now:      func() time.Time { return fixedNow },
		},
		store:    store,
		queue:    q,
		profiles: ps,
	}
}

func studentForm() Form {
	return Form{
		UserID:            "u1",
		Email:             "u1@example.com",
		UserType:          profiles.Student,
		NetworkingGoal:    profiles.GoalExploring,
		TargetIndustries:  []string{"Finance", "Tech"},
		SendWeeklyUpdates: true,
		ConnectAlumni:     true,
	}
}

func pdfUpload() *Upload {
	return &Upload{FileName: "cv.pdf", ContentType: "application/pdf", Data: pdfBytes}
}

func TestCompleteStoresCVAndEnqueues(t *testing.T) {
	fx := newFixture(t)

	p, err := fx.svc.Complete(context.Background(), studentForm(), pdfUpload())
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	wantKey := "u1/1700000000000.pdf"
	if _, ok := fx.store.puts[wantKey]; !ok {
		t.Fatalf("expected cv stored at %s, got %v", wantKey, fx.store.puts)
	}
	if !p.OnboardingCompleted || p.CVPath != wantKey || p.CVUploadedAt == nil {
		t.Fatalf("unexpected profile %+v", p)
	}
	if len(p.TargetIndustries) != 2 || !p.SendWeeklyUpdates || !p.ConnectWithAlumni || p.ConnectWithStudents {
		t.Fatalf("answers not saved: %+v", p)
	}
	if _, err := fx.profiles.GetSummary(context.Background(), "u1"); err != nil {
		t.Fatalf("summary not built: %v", err)
	}

	if len(fx.queue.sent) != 1 {
		t.Fatalf("expected one job, got %d", len(fx.queue.sent))
	}
	job := fx.queue.sent[0]
	if job.Kind != queue.KindExtractCV || job.UserID != "u1" || job.CVPath != wantKey || !job.Notify || job.RequestID == "" {
		t.Fatalf("unexpected job %+v", job)
	}
}

func TestCompleteEnqueueFailureKeepsProfile(t *testing.T) {
	fx := newFixture(t)
	fx.queue.err = errors.New("queue down")

	if _, err := fx.svc.Complete(context.Background(), studentForm(), pdfUpload()); err != nil {
		t.Fatalf("enqueue failure must not fail onboarding: %v", err)
	}
	done, err := fx.svc.Status(context.Background(), "u1")
	if err != nil || !done {
		t.Fatalf("expected onboarding complete, got %v %v", done, err)
	}
}

func TestCompleteRunsInBackgroundWithoutQueue(t *testing.T) {
	fx := newFixture(t)
	fx.svc.Queue = nil
	ran := make(chan error, 1)
	fx.svc.Run = func(ctx context.Context, msg queue.Message) error {
		ran <- ctx.Err()
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := fx.svc.Complete(ctx, studentForm(), pdfUpload()); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	cancel()

	select {
	case err := <-ran:
		if err != nil {
			t.Fatalf("background job saw a cancelled context: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("background job did not run")
	}
}

func TestCompleteWithPresignedPath(t *testing.T) {
	fx := newFixture(t)
	f := studentForm()
	f.CVPath = "u1/1699999999999.pdf"

	p, err := fx.svc.Complete(context.Background(), f, nil)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if p.CVPath != f.CVPath || len(fx.store.puts) != 0 {
		t.Fatalf("expected stored path reused, got %q puts=%d", p.CVPath, len(fx.store.puts))
	}
}

func TestCompleteRejectsBeforeAnyCall(t *testing.T) {
	big := append(append([]byte{}, pdfBytes...), make([]byte, MaxCVBytes)...)
	tests := []struct {
		name   string
		form   func(f *Form)
		upload *Upload
	}{
		{"no cv", nil, nil},
		{"docx extension", nil, &Upload{FileName: "cv.docx", ContentType: "application/pdf", Data: pdfBytes}},
		{"declared type", nil, &Upload{FileName: "cv.pdf", ContentType: "application/msword", Data: pdfBytes}},
		{"sniffed type", nil, &Upload{FileName: "cv.pdf", ContentType: "application/pdf", Data: []byte("hello world")}},
		{"empty", nil, &Upload{FileName: "cv.pdf", ContentType: "application/pdf"}},
		{"oversized", nil, &Upload{FileName: "cv.pdf", ContentType: "application/pdf", Data: big}},
		{"traversal name", nil, &Upload{FileName: "../cv.pdf", ContentType: "application/pdf", Data: pdfBytes}},
		{"foreign path", func(f *Form) { f.CVPath = "u2/1.pdf" }, nil},
		{"both cv sources", func(f *Form) { f.CVPath = "u1/1.pdf" }, pdfUpload()},
		{"wrong goal", func(f *Form) { f.NetworkingGoal = profiles.GoalGiveBack }, pdfUpload()},
		{"no industries", func(f *Form) { f.TargetIndustries = nil }, pdfUpload()},
		{"unknown type", func(f *Form) { f.UserType = "staff" }, pdfUpload()},
		{"unknown sub-sector", func(f *Form) { f.Industries = industries.Selection{"Finance": {"Crypto"}} }, pdfUpload()},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fx := newFixture(t)
			f := studentForm()
			if tc.form != nil {
				tc.form(&f)
			}
			_, err := fx.svc.Complete(context.Background(), f, tc.upload)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if len(fx.store.puts) != 0 || len(fx.queue.sent) != 0 {
				t.Fatalf("expected no store or queue calls")
			}
			if _, err := fx.profiles.Get(context.Background(), "u1"); !errors.Is(err, profiles.ErrNotFound) {
				t.Fatalf("expected no profile written, got %v", err)
			}
		})
	}
}

func TestValidateGoalRules(t *testing.T) {
	tests := []struct {
		name string
		form Form
		ok   bool
	}{
		{"student venture without industries", Form{UserType: profiles.Student, NetworkingGoal: profiles.GoalVenture}, true},
		{"student exploring without industries", Form{UserType: profiles.Student, NetworkingGoal: profiles.GoalExploring}, false},
		{"alumni pivot with selection", Form{UserType: profiles.Alumni, NetworkingGoal: profiles.GoalPivot, Industries: industries.Selection{"Tech": {"FinTech"}}}, true},
		{"alumni expand without industries", Form{UserType: profiles.Alumni, NetworkingGoal: profiles.GoalExpand}, false},
		{"alumni give-back with interests", Form{UserType: profiles.Alumni, NetworkingGoal: profiles.GoalGiveBack, SpecificInterests: "mentoring"}, true},
		{"alumni give-back without interests", Form{UserType: profiles.Alumni, NetworkingGoal: profiles.GoalGiveBack}, false},
		{"student with alumni goal", Form{UserType: profiles.Student, NetworkingGoal: profiles.GoalExpand, TargetIndustries: []string{"Tech"}}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.form.UserID = "u1"
			err := Validate(tc.form, pdfUpload())
			if tc.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestTargetIndustriesMergesSelection(t *testing.T) {
	f := Form{
		TargetIndustries: []string{" Consulting ", "Consulting"},
		Industries:       industries.Selection{"Finance": {"Hedge Funds", "Private Equity"}},
	}
	got := f.targetIndustries()
	want := []string{"Consulting", "Finance: Hedge Funds, Private Equity"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("targetIndustries() = %q, want %q", got, want)
	}
}

func TestPresignCV(t *testing.T) {
	fx := newFixture(t)
	presigner := &recordingPresigner{}
	fx.svc.Presigner = presigner

	out, err := fx.svc.PresignCV(context.Background(), "u1", "cv.pdf", "application/pdf", 2048)
	if err != nil {
		t.Fatalf("PresignCV: %v", err)
	}
	if out.Key != "u1/1700000000000.pdf" || out.ExpiresIn != presignTTL {
		t.Fatalf("unexpected presign %+v", out)
	}

	if _, err := fx.svc.PresignCV(context.Background(), "u1", "cv.pdf", "application/pdf", MaxCVBytes+1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected size rejection, got %v", err)
	}
	if len(presigner.keys) != 1 {
		t.Fatalf("rejected request must not be signed")
	}

	fx.svc.Presigner = nil
	if _, err := fx.svc.PresignCV(context.Background(), "u1", "cv.pdf", "application/pdf", 10); !errors.Is(err, object.ErrPresignUnsupported) {
		t.Fatalf("expected ErrPresignUnsupported, got %v", err)
	}
}
