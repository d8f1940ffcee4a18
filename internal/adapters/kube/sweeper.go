package kube

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/core/ports"
	"go.trai.ch/zerr"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/client-go/kubernetes"
)

// SweeperOptions configures a Sweeper.
type SweeperOptions struct {
	Namespace    string
	Registration string
	Interval     time.Duration
	CallTimeout  time.Duration
	Clock        clockwork.Clock
	Logger       ports.Logger
}

// Sweeper deletes jobs this registration created once they succeeded.
// It runs on a single-shot timer that is re-armed after every sweep, so
// sweeps never overlap.
type Sweeper struct {
	client      kubernetes.Interface
	namespace   string
	selector    string
	interval    time.Duration
	callTimeout time.Duration
	clock       clockwork.Clock
	logger      ports.Logger

	mu      sync.Mutex
	timer   clockwork.Timer
	started bool
	stopped bool
}

// NewSweeper creates a stopped Sweeper.
func NewSweeper(client kubernetes.Interface, opts SweeperOptions) *Sweeper {
	if opts.Interval <= 0 {
		opts.Interval = domain.DefaultCleanupInterval
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Sweeper{
		client:      client,
		namespace:   opts.Namespace,
		selector:    labels.Set{LabelCreator: labelValue(opts.Registration)}.String(),
		interval:    opts.Interval,
		callTimeout: opts.CallTimeout,
		clock:       opts.Clock,
		logger:      opts.Logger,
	}
}

// Start arms the timer. Calling Start more than once has no effect.
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true
	s.timer = s.clock.AfterFunc(s.interval, s.tick)
}

// Stop disarms the timer. A sweep in progress finishes.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
}

func (s *Sweeper) tick() {
	if _, err := s.Sweep(context.Background()); err != nil {
		s.logError(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		s.timer = s.clock.AfterFunc(s.interval, s.tick)
	}
}

// Sweep deletes every completed job with at least one succeeded pod and
// returns how many were deleted. Failures on single jobs are logged and
// do not stop the sweep.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	listCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	jobs, err := s.client.BatchV1().Jobs(s.namespace).List(listCtx, metav1.ListOptions{LabelSelector: s.selector})
	cancel()
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to list jobs"), "namespace", s.namespace)
	}

	propagation := metav1.DeletePropagationForeground
	deleted := 0
	for _, job := range jobs.Items {
		if job.Status.CompletionTime == nil || job.Status.Succeeded == 0 {
			continue
		}

		delCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		err := s.client.BatchV1().Jobs(job.Namespace).Delete(delCtx, job.Name, metav1.DeleteOptions{PropagationPolicy: &propagation})
		cancel()
		if err != nil && !apierrors.IsNotFound(err) {
			s.logError(zerr.With(zerr.Wrap(err, domain.ErrJobDeleteFailed.Error()), "job", job.Name))
			continue
		}
		deleted++
	}

	if deleted > 0 && s.logger != nil {
		s.logger.Info(fmt.Sprintf("Deleted %d completed jobs", deleted))
	}
	return deleted, nil
}

func (s *Sweeper) logError(err error) {
	if s.logger != nil {
		s.logger.Error(err)
	}
}
