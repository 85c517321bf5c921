package ws

import (
	"adminboard/common"
	"sync"

	"github.com/fundwit/go-commons/types"
)

// Registry is the process-local directory of live channels per user. A user
// owns zero or more channels (tabs, devices). Buckets are per-user, so
// lifecycle events of unrelated users never contend on one lock.
//
// The state is process-local on purpose: multi-instance deployments need an
// external fan-out layer in front of this.
type Registry struct {
	buckets sync.Map // types.ID -> *channelSet
}

type channelSet struct {
	mu       sync.Mutex
	channels map[Channel]bool

	// dead marks a set removed from the registry; Add retries instead of
	// resurrecting it, closing the add/remove race on an emptied bucket.
	dead bool
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Add(userId types.ID, channel Channel) {
	if channel == nil {
		return
	}
	for {
		value, _ := r.buckets.LoadOrStore(userId, &channelSet{channels: map[Channel]bool{}})
		set := value.(*channelSet)

		set.mu.Lock()
		if set.dead {
			set.mu.Unlock()
			continue
		}
		set.channels[channel] = true
		set.mu.Unlock()
		return
	}
}

// Remove drops the channel and prunes the user entry once its set is empty,
// so the map does not grow across connect/disconnect churn.
func (r *Registry) Remove(userId types.ID, channel Channel) {
	value, found := r.buckets.Load(userId)
	if !found {
		return
	}
	set := value.(*channelSet)

	set.mu.Lock()
	delete(set.channels, channel)
	prune := len(set.channels) == 0
	if prune {
		set.dead = true
	}
	set.mu.Unlock()

	if prune {
		r.buckets.CompareAndDelete(userId, set)
	}
}

func (r *Registry) IsOnline(userId types.ID) bool {
	value, found := r.buckets.Load(userId)
	if !found {
		return false
	}
	set := value.(*channelSet)

	set.mu.Lock()
	defer set.mu.Unlock()
	return !set.dead && len(set.channels) > 0
}

// SendToUser pushes payload to every open channel of the user. Closed
// channels are skipped, and a failure on one channel never prevents delivery
// attempts on the others.
func (r *Registry) SendToUser(userId types.ID, payload []byte) {
	value, found := r.buckets.Load(userId)
	if !found {
		return
	}
	set := value.(*channelSet)

	set.mu.Lock()
	channels := make([]Channel, 0, len(set.channels))
	for channel := range set.channels {
		channels = append(channels, channel)
	}
	set.mu.Unlock()

	for _, channel := range channels {
		if channel.Closed() {
			r.Remove(userId, channel)
			continue
		}
		if err := channel.Send(payload); err != nil {
			common.Log.Debugf("push to user %d failed: %v", userId, err)
			r.Remove(userId, channel)
		}
	}
}

// Broadcast delivers the identical payload to every online user.
func (r *Registry) Broadcast(payload []byte) {
	r.buckets.Range(func(key, value interface{}) bool {
		r.SendToUser(key.(types.ID), payload)
		return true
	})
}
