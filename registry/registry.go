// Package registry registers orchestrator instances with etcd so
// operators and API frontends can discover which assessment engines are
// running. Presence is lease-based: an instance that stops renewing its
// lease disappears from the registry within the TTL.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// DefaultNamespace is the etcd key prefix for instance entries.
const DefaultNamespace = "urbannexus"

// DefaultTTL is the lease time-to-live in seconds.
const DefaultTTL = 30

// InstanceInfo describes one running orchestrator instance.
type InstanceInfo struct {
	// InstanceID uniquely identifies the instance (typically a UUID).
	InstanceID string `json:"instance_id"`

	// Endpoint is the network address where the instance serves
	// (host:port).
	Endpoint string `json:"endpoint"`

	// Version is the instance's build version.
	Version string `json:"version"`

	// RuleSetIDs lists the governance rule IDs the instance enforces,
	// so operators can audit policy drift across a fleet.
	RuleSetIDs []string `json:"rule_set_ids,omitempty"`

	// StartedAt is when the instance started.
	StartedAt time.Time `json:"started_at"`
}

// Config configures the etcd connection.
type Config struct {
	// Endpoints is the list of etcd endpoints.
	Endpoints []string

	// Namespace prefixes all keys. Default: DefaultNamespace.
	Namespace string

	// TTL is the lease time-to-live in seconds. Default: DefaultTTL.
	TTL int
}

// Client registers and discovers orchestrator instances. All methods
// are safe for concurrent use.
type Client struct {
	client    *clientv3.Client
	namespace string
	ttl       int

	mu        sync.Mutex
	leases    map[string]clientv3.LeaseID
	cancelFns map[string]context.CancelFunc
	wg        sync.WaitGroup
	closed    bool
}

// NewClient connects to etcd and verifies connectivity.
func NewClient(cfg Config) (*Client, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("registry endpoints cannot be empty")
	}
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := cli.Get(ctx, "health-check"); err != nil && err != context.DeadlineExceeded {
		_ = cli.Close()
		return nil, fmt.Errorf("etcd health check failed: %w", err)
	}

	return &Client{
		client:    cli,
		namespace: namespace,
		ttl:       ttl,
		leases:    make(map[string]clientv3.LeaseID),
		cancelFns: make(map[string]context.CancelFunc),
	}, nil
}

func (c *Client) key(instanceID string) string {
	return fmt.Sprintf("/%s/orchestrator/%s", c.namespace, instanceID)
}

// Register adds an instance to the registry and starts lease renewal.
// Re-registering the same instance replaces its entry.
func (c *Client) Register(ctx context.Context, info InstanceInfo) error {
	if info.InstanceID == "" {
		return fmt.Errorf("instance ID is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("registry client is closed")
	}

	if cancel, ok := c.cancelFns[info.InstanceID]; ok {
		cancel()
		delete(c.cancelFns, info.InstanceID)
	}

	lease, err := c.client.Grant(ctx, int64(c.ttl))
	if err != nil {
		return fmt.Errorf("failed to create lease: %w", err)
	}

	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal instance info: %w", err)
	}
	if _, err := c.client.Put(ctx, c.key(info.InstanceID), string(data), clientv3.WithLease(lease.ID)); err != nil {
		return fmt.Errorf("failed to register instance: %w", err)
	}

	c.leases[info.InstanceID] = lease.ID
	keepaliveCtx, cancel := context.WithCancel(context.Background())
	c.cancelFns[info.InstanceID] = cancel

	c.wg.Add(1)
	go c.keepalive(keepaliveCtx, lease.ID, info.InstanceID)
	return nil
}

// Deregister removes an instance. Deregistering an unknown instance is
// a no-op.
func (c *Client) Deregister(ctx context.Context, instanceID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("registry client is closed")
	}

	if cancel, ok := c.cancelFns[instanceID]; ok {
		cancel()
		delete(c.cancelFns, instanceID)
	}

	leaseID, ok := c.leases[instanceID]
	if !ok {
		return nil
	}
	if _, err := c.client.Revoke(ctx, leaseID); err != nil {
		return fmt.Errorf("failed to revoke lease: %w", err)
	}
	delete(c.leases, instanceID)
	return nil
}

// Discover lists the currently registered instances in arbitrary order.
func (c *Client) Discover(ctx context.Context) ([]InstanceInfo, error) {
	prefix := fmt.Sprintf("/%s/orchestrator/", c.namespace)
	resp, err := c.client.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to discover instances: %w", err)
	}

	instances := make([]InstanceInfo, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var info InstanceInfo
		if err := json.Unmarshal(kv.Value, &info); err != nil {
			continue
		}
		instances = append(instances, info)
	}
	return instances, nil
}

// Close stops all lease renewal and closes the etcd connection.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	for _, cancel := range c.cancelFns {
		cancel()
	}
	c.cancelFns = make(map[string]context.CancelFunc)
	c.mu.Unlock()

	c.wg.Wait()
	return c.client.Close()
}

// keepalive renews the lease every TTL/3 seconds until cancelled or the
// lease becomes invalid.
func (c *Client) keepalive(ctx context.Context, leaseID clientv3.LeaseID, instanceID string) {
	defer c.wg.Done()

	ticker := time.NewTicker(time.Duration(c.ttl) * time.Second / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.client.KeepAliveOnce(context.Background(), leaseID); err != nil {
				c.mu.Lock()
				delete(c.leases, instanceID)
				delete(c.cancelFns, instanceID)
				c.mu.Unlock()
				return
			}
		}
	}
}
