package kube

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/core/ports"
	"go.trai.ch/zerr"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/util/retry"
)

// DefaultCallTimeout bounds every single API call.
const DefaultCallTimeout = 30 * time.Second

// DefaultCreateBackoff retries job creation while a deleted job with the same name terminates.
var DefaultCreateBackoff = wait.Backoff{
	Steps:    8,
	Duration: 500 * time.Millisecond,
	Factor:   1.5,
	Jitter:   0.1,
	Cap:      15 * time.Second,
}

// Scheduler implements ports.GoalScheduler with Kubernetes jobs.
type Scheduler struct {
	client      kubernetes.Interface
	isolation   domain.IsolationConfig
	jobOptions  JobOptions
	callTimeout time.Duration
	backoff     wait.Backoff
	sweeper     *Sweeper
}

var _ ports.GoalScheduler = (*Scheduler)(nil)

// Options configures a Scheduler.
type Options struct {
	Isolation    domain.IsolationConfig
	Registration string
	WorkspaceID  string
	Container    string
	Command      []string
	CallTimeout  time.Duration
	Backoff      *wait.Backoff
	Clock        clockwork.Clock
	Logger       ports.Logger
}

// NewScheduler creates a Scheduler. On the leader it also starts the sweeper
// for finished jobs; call Close to stop it.
func NewScheduler(client kubernetes.Interface, opts Options) *Scheduler {
	timeout := opts.CallTimeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	backoff := DefaultCreateBackoff
	if opts.Backoff != nil {
		backoff = *opts.Backoff
	}
	s := &Scheduler{
		client:    client,
		isolation: opts.Isolation,
		jobOptions: JobOptions{
			Namespace:    opts.Isolation.PodNamespace,
			Registration: opts.Registration,
			WorkspaceID:  opts.WorkspaceID,
			Container:    opts.Container,
			CachePath:    opts.Isolation.CachePath,
			Command:      opts.Command,
		},
		callTimeout: timeout,
		backoff:     backoff,
	}
	s.sweeper = NewSweeper(client, SweeperOptions{
		Namespace:    opts.Isolation.PodNamespace,
		Registration: opts.Registration,
		Interval:     opts.Isolation.CleanupInterval,
		CallTimeout:  timeout,
		Clock:        opts.Clock,
		Logger:       opts.Logger,
	})
	if opts.Isolation.Leader {
		s.sweeper.Start()
	}
	return s
}

// Close stops the sweeper.
func (s *Scheduler) Close() error {
	s.sweeper.Stop()
	return nil
}

// Supports reports whether inv runs in a job. A process that already runs
// isolated never schedules again.
func (s *Scheduler) Supports(inv *domain.Invocation) bool {
	if s.isolation.Isolated {
		return false
	}
	switch {
	case inv.Implementation.Isolated && (s.isolation.Mode == domain.IsolationIsolated || s.isolation.Mode == domain.IsolationAll):
		return true
	case s.isolation.Mode == domain.IsolationAll:
		return true
	default:
		return false
	}
}

// Schedule replaces any job left over for the goal with a fresh one.
func (s *Scheduler) Schedule(ctx context.Context, inv *domain.Invocation) (domain.ExecutionResult, error) {
	parent, err := s.parentPod(ctx)
	if err != nil {
		return domain.Failure(err.Error()), err
	}

	job, err := BuildJob(parent, inv, s.jobOptions)
	if err != nil {
		return domain.Failure(err.Error()), err
	}

	if err := s.deleteJob(ctx, job.Namespace, job.Name); err != nil {
		return domain.Failure(err.Error()), err
	}

	err = retry.OnError(s.backoff, isRetriable, func() error {
		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
		_, err := s.client.BatchV1().Jobs(job.Namespace).Create(callCtx, job, metav1.CreateOptions{})
		return err
	})
	if err != nil {
		err = zerr.With(zerr.Wrap(err, domain.ErrJobCreateFailed.Error()), "job", job.Name)
		return domain.Failure(err.Error()), err
	}

	if inv.Progress != nil {
		_, _ = fmt.Fprintf(inv.Progress, "Scheduled job '%s/%s'\n", job.Namespace, job.Name)
	}
	return domain.ExecutionResult{
		Code:        0,
		Message:     "Scheduled job " + job.Namespace + "/" + job.Name,
		State:       domain.StateInProcess,
		Description: domain.ScheduledDescription(inv.Goal.Name),
	}, nil
}

// Sweeper returns the job sweeper bound to this scheduler's namespace and registration.
func (s *Scheduler) Sweeper() *Sweeper {
	return s.sweeper
}

func (s *Scheduler) parentPod(ctx context.Context) (*corev1.Pod, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	pod, err := s.client.CoreV1().Pods(s.isolation.PodNamespace).Get(callCtx, s.isolation.PodName, metav1.GetOptions{})
	if err != nil {
		return nil, zerr.With(zerr.With(zerr.Wrap(err, domain.ErrParentPodUnavailable.Error()),
			"pod", s.isolation.PodName), "namespace", s.isolation.PodNamespace)
	}
	return pod, nil
}

func (s *Scheduler) deleteJob(ctx context.Context, namespace, name string) error {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	propagation := metav1.DeletePropagationForeground
	err := s.client.BatchV1().Jobs(namespace).Delete(callCtx, name, metav1.DeleteOptions{PropagationPolicy: &propagation})
	if err != nil && !apierrors.IsNotFound(err) {
		return zerr.With(zerr.Wrap(err, domain.ErrJobDeleteFailed.Error()), "job", name)
	}
	return nil
}

func isRetriable(err error) bool {
	return apierrors.IsAlreadyExists(err) ||
		apierrors.IsConflict(err) ||
		apierrors.IsServerTimeout(err) ||
		apierrors.IsTimeout(err) ||
		apierrors.IsTooManyRequests(err) ||
		apierrors.IsServiceUnavailable(err) ||
		apierrors.IsInternalError(err)
}
