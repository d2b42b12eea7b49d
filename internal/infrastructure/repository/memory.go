package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/enum"
	domainRepo "github.com/sangkips/posprint/internal/domain/repository"
	"github.com/sangkips/posprint/pkg/pagination"
)

// In-memory stores used when the agent runs without a database.

type staticPrinterRepository struct {
	printers []entity.Printer
}

// NewStaticPrinterRepository serves a fixed printer list, typically loaded from PRINTERS_FILE.
// Printers without an ID get a fresh one.
func NewStaticPrinterRepository(printers []entity.Printer) domainRepo.PrinterRepository {
	list := make([]entity.Printer, len(printers))
	copy(list, printers)
	for i := range list {
		if list[i].ID == uuid.Nil {
			list[i].ID = uuid.New()
		}
	}
	return &staticPrinterRepository{printers: list}
}

func (r *staticPrinterRepository) FindActiveByRole(_ context.Context, role enum.PrinterRole) (*entity.Printer, error) {
	for i := range r.printers {
		if r.printers[i].Role == role && r.printers[i].IsActive {
			p := r.printers[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (r *staticPrinterRepository) GetByID(_ context.Context, id uuid.UUID) (*entity.Printer, error) {
	for i := range r.printers {
		if r.printers[i].ID == id {
			p := r.printers[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (r *staticPrinterRepository) List(context.Context) ([]entity.Printer, error) {
	out := make([]entity.Printer, len(r.printers))
	copy(out, r.printers)
	return out, nil
}

type memoryBillSequence struct {
	mu     sync.Mutex
	values map[string]int64
}

// NewMemoryBillSequence returns a process-local sequence starting after start.
func NewMemoryBillSequence(start int64) domainRepo.BillSequenceRepository {
	return &memoryBillSequence{values: map[string]int64{"": start}}
}

func (s *memoryBillSequence) Next(_ context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[name]
	if !ok {
		v = s.values[""]
	}
	v++
	s.values[name] = v
	return v, nil
}

type memoryPrintJobRepository struct {
	mu    sync.Mutex
	limit int
	jobs  []entity.PrintJob
}

// NewMemoryPrintJobRepository keeps the most recent limit jobs.
func NewMemoryPrintJobRepository(limit int) domainRepo.PrintJobRepository {
	if limit <= 0 {
		limit = 500
	}
	return &memoryPrintJobRepository{limit: limit}
}

func (r *memoryPrintJobRepository) Create(_ context.Context, job *entity.PrintJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	now := time.Now()
	job.CreatedAt, job.UpdatedAt = now, now
	r.jobs = append(r.jobs, *job)
	if len(r.jobs) > r.limit {
		r.jobs = r.jobs[len(r.jobs)-r.limit:]
	}
	return nil
}

func (r *memoryPrintJobRepository) Update(_ context.Context, job *entity.PrintJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.jobs {
		if r.jobs[i].ID == job.ID {
			job.UpdatedAt = time.Now()
			r.jobs[i] = *job
			return nil
		}
	}
	return nil
}

func (r *memoryPrintJobRepository) GetByID(_ context.Context, id uuid.UUID) (*entity.PrintJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.jobs {
		if r.jobs[i].ID == id {
			j := r.jobs[i]
			return &j, nil
		}
	}
	return nil, nil
}

func (r *memoryPrintJobRepository) List(_ context.Context, filter domainRepo.PrintJobFilter, params *pagination.PaginationParams) ([]entity.PrintJob, int64, error) {
	r.mu.Lock()
	matched := make([]entity.PrintJob, 0, len(r.jobs))
	for _, j := range r.jobs {
		if filter.Document != "" && j.Document != filter.Document {
			continue
		}
		if filter.Status != nil && j.Status != *filter.Status {
			continue
		}
		matched = append(matched, j)
	}
	r.mu.Unlock()

	sort.SliceStable(matched, func(a, b int) bool { return matched[a].CreatedAt.After(matched[b].CreatedAt) })

	params.Validate()
	total := int64(len(matched))
	start := params.Offset()
	if start >= len(matched) {
		return []entity.PrintJob{}, total, nil
	}
	end := start + params.PerPage
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

type memoryBusinessProfile struct {
	mu      sync.RWMutex
	profile *entity.BusinessProfile
}

// NewMemoryBusinessProfileRepository holds the profile in memory, seeded with initial when non-nil.
func NewMemoryBusinessProfileRepository(initial *entity.BusinessProfile) domainRepo.BusinessProfileRepository {
	return &memoryBusinessProfile{profile: initial}
}

func (r *memoryBusinessProfile) Get(context.Context) (*entity.BusinessProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.profile == nil {
		return nil, nil
	}
	p := *r.profile
	return &p, nil
}

func (r *memoryBusinessProfile) Save(_ context.Context, profile *entity.BusinessProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	p := *profile
	r.profile = &p
	return nil
}

type memoryIdempotency struct {
	mu   sync.Mutex
	keys map[string]entity.IdempotencyKey
}

// NewMemoryIdempotencyRepository stores idempotency keys in process memory.
func NewMemoryIdempotencyRepository() domainRepo.IdempotencyRepository {
	return &memoryIdempotency{keys: make(map[string]entity.IdempotencyKey)}
}

func (r *memoryIdempotency) GetByKey(_ context.Context, key, clientID string) (*entity.IdempotencyKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.keys[clientID+"\x00"+key]
	if !ok {
		return nil, nil
	}
	return &k, nil
}

func (r *memoryIdempotency) Create(_ context.Context, ikey *entity.IdempotencyKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ikey.ID == uuid.Nil {
		ikey.ID = uuid.New()
	}
	ikey.CreatedAt = time.Now()
	r.keys[ikey.ClientID+"\x00"+ikey.Key] = *ikey
	return nil
}

func (r *memoryIdempotency) DeleteExpired(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range r.keys {
		if v.IsExpired() {
			delete(r.keys, k)
		}
	}
	return nil
}
