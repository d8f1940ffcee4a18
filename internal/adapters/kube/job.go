package kube

import (
	"maps"
	"path"

	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/zerr"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	// LabelCreator marks jobs created by an executor registration. The sweeper selects on it.
	LabelCreator = "goalkeeper.trai.ch/creator"
	// LabelGoalSetID carries the goal set id; jobs of one set prefer the same node.
	LabelGoalSetID = "goalkeeper.trai.ch/goal-set-id"
	// LabelWorkspaceID carries the workspace id.
	LabelWorkspaceID = "goalkeeper.trai.ch/workspace-id"
	// AnnotationGoalID carries the full "<goalSetId>/<uniqueName>" identity.
	AnnotationGoalID = "goalkeeper.trai.ch/goal-id"
	// AnnotationCorrelationID carries the dispatch correlation id.
	AnnotationCorrelationID = "goalkeeper.trai.ch/correlation-id"

	hostnameTopologyKey = "kubernetes.io/hostname"
	affinityWeight      = 100
)

// JobOptions are the executor-level settings applied to every job.
type JobOptions struct {
	Namespace    string
	Registration string
	WorkspaceID  string
	// Container selects the parent container to clone. Empty selects the first one.
	Container string
	// CachePath is the mount path of the shared cache volume.
	CachePath string
	// Command replaces the container command so the job runs a single goal.
	Command []string
}

// DefaultJobCommand runs the isolated execution entry point.
var DefaultJobCommand = []string{"goalkeeper", "execute"}

// BuildJob derives the job for inv from the parent pod. The parent is not modified.
func BuildJob(parent *corev1.Pod, inv *domain.Invocation, opts JobOptions) (*batchv1.Job, error) {
	pod := parent.DeepCopy()

	idx := -1
	for i, c := range pod.Spec.Containers {
		if opts.Container == "" || c.Name == opts.Container {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, zerr.With(domain.ErrParentContainerNotFound, "container", opts.Container)
	}
	container := pod.Spec.Containers[idx]

	goal := inv.Goal
	name := JobName(container.Name, goal.GoalSetID, goal.Name)

	labels := map[string]string{
		LabelCreator:     labelValue(opts.Registration),
		LabelGoalSetID:   labelValue(goal.GoalSetID),
		LabelWorkspaceID: labelValue(opts.WorkspaceID),
	}
	annotations := map[string]string{
		AnnotationGoalID:        goal.ID(),
		AnnotationCorrelationID: inv.CorrelationID,
	}

	command := opts.Command
	if len(command) == 0 {
		command = DefaultJobCommand
	}
	container.Command = append([]string(nil), command...)
	container.Args = nil
	container.LivenessProbe = nil
	container.ReadinessProbe = nil
	container.StartupProbe = nil
	container.Ports = nil
	container.Env = setEnv(container.Env, map[string]string{
		domain.EnvJobName:           name,
		domain.EnvGoalSetID:         goal.GoalSetID,
		domain.EnvGoalUniqueName:    goal.UniqueName,
		domain.EnvCorrelationID:     inv.CorrelationID,
		domain.EnvIsolatedExecution: "true",
	})

	spec := pod.Spec
	spec.Containers = []corev1.Container{container}
	spec.InitContainers = nil
	spec.EphemeralContainers = nil
	spec.RestartPolicy = corev1.RestartPolicyNever
	spec.NodeName = ""
	spec.Hostname = ""
	spec.Subdomain = ""
	spec.Volumes = rewriteCacheVolumes(spec.Volumes, container, opts.CachePath, opts.WorkspaceID)
	spec.Affinity = withGoalSetAffinity(spec.Affinity, labels[LabelGoalSetID])

	backoffLimit := int32(0)
	return &batchv1.Job{
		ObjectMeta: metav1.ObjectMeta{
			Name:        name,
			Namespace:   opts.Namespace,
			Labels:      labels,
			Annotations: annotations,
		},
		Spec: batchv1.JobSpec{
			BackoffLimit: &backoffLimit,
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels:      maps.Clone(labels),
					Annotations: maps.Clone(annotations),
				},
				Spec: spec,
			},
		},
	}, nil
}

// setEnv overrides or appends the given variables, keeping the order of existing ones.
func setEnv(env []corev1.EnvVar, overrides map[string]string) []corev1.EnvVar {
	out := make([]corev1.EnvVar, 0, len(env)+len(overrides))
	seen := make(map[string]bool, len(overrides))
	for _, e := range env {
		if v, ok := overrides[e.Name]; ok {
			out = append(out, corev1.EnvVar{Name: e.Name, Value: v})
			seen[e.Name] = true
			continue
		}
		out = append(out, e)
	}
	for _, k := range []string{
		domain.EnvJobName,
		domain.EnvGoalSetID,
		domain.EnvGoalUniqueName,
		domain.EnvCorrelationID,
		domain.EnvIsolatedExecution,
	} {
		if v, ok := overrides[k]; ok && !seen[k] {
			out = append(out, corev1.EnvVar{Name: k, Value: v})
		}
	}
	return out
}

// rewriteCacheVolumes appends the workspace id to hostPath volumes the
// container mounts at the cache path, so tenants never share a cache directory.
func rewriteCacheVolumes(volumes []corev1.Volume, c corev1.Container, cachePath, workspaceID string) []corev1.Volume {
	if cachePath == "" || workspaceID == "" {
		return volumes
	}

	cacheVolumes := make(map[string]bool)
	for _, m := range c.VolumeMounts {
		if path.Clean(m.MountPath) == path.Clean(cachePath) {
			cacheVolumes[m.Name] = true
		}
	}
	for i := range volumes {
		v := &volumes[i]
		if v.HostPath != nil && cacheVolumes[v.Name] {
			v.HostPath.Path = path.Join(v.HostPath.Path, workspaceID)
		}
	}
	return volumes
}

func withGoalSetAffinity(affinity *corev1.Affinity, goalSetID string) *corev1.Affinity {
	if affinity == nil {
		affinity = &corev1.Affinity{}
	}
	if affinity.PodAffinity == nil {
		affinity.PodAffinity = &corev1.PodAffinity{}
	}
	affinity.PodAffinity.PreferredDuringSchedulingIgnoredDuringExecution = append(
		affinity.PodAffinity.PreferredDuringSchedulingIgnoredDuringExecution,
		corev1.WeightedPodAffinityTerm{
			Weight: affinityWeight,
			PodAffinityTerm: corev1.PodAffinityTerm{
				LabelSelector: &metav1.LabelSelector{
					MatchLabels: map[string]string{LabelGoalSetID: goalSetID},
				},
				TopologyKey: hostnameTopologyKey,
			},
		},
	)
	return affinity
}
