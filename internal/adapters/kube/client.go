// Package kube runs goals in dedicated Kubernetes jobs cloned from the
// executor's own pod, and sweeps finished jobs.
package kube

import (
	"go.trai.ch/zerr"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// NewClientset connects with the in-cluster service account, falling back
// to the default kubeconfig loading rules outside a cluster.
func NewClientset() (kubernetes.Interface, error) {
	cfg, err := rest.InClusterConfig()
	if err != nil {
		cfg, err = clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
			clientcmd.NewDefaultClientConfigLoadingRules(),
			&clientcmd.ConfigOverrides{},
		).ClientConfig()
		if err != nil {
			return nil, zerr.Wrap(err, "failed to load kubernetes client configuration")
		}
	}

	cs, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create kubernetes client")
	}
	return cs, nil
}
