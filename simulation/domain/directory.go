package domain

import (
	"fmt"
	"sort"
	"sync"

	"github.com/twmb/murmur3"
)

const directoryShardsCount = 16

type directoryShard struct {
	mu     sync.RWMutex
	actors map[ActorRef]*Actor
}

// Directory resolves actor references for one run. Actors are spread over
// hash-selected shards so read-only observers can query it while the run advances.
type Directory struct {
	shards [directoryShardsCount]*directoryShard
}

func NewDirectory() *Directory {
	d := &Directory{}
	for i := range d.shards {
		d.shards[i] = &directoryShard{actors: make(map[ActorRef]*Actor)}
	}
	return d
}

func (d *Directory) shardOf(ref ActorRef) *directoryShard {
	return d.shards[murmur3.Sum32([]byte(ref))%directoryShardsCount]
}

func (d *Directory) Register(actor *Actor) error {
	shard := d.shardOf(actor.GetId())
	shard.mu.Lock()
	defer shard.mu.Unlock()

	if _, ok := shard.actors[actor.GetId()]; ok {
		return fmt.Errorf("actor '%v': %w", actor.GetId(), ErrDuplicateActor)
	}
	shard.actors[actor.GetId()] = actor
	return nil
}

func (d *Directory) Lookup(ref ActorRef) (*Actor, bool) {
	shard := d.shardOf(ref)
	shard.mu.RLock()
	defer shard.mu.RUnlock()

	actor, ok := shard.actors[ref]
	return actor, ok
}

func (d *Directory) Unregister(ref ActorRef) {
	shard := d.shardOf(ref)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	delete(shard.actors, ref)
}

func (d *Directory) Size() int {
	size := 0
	for _, shard := range d.shards {
		shard.mu.RLock()
		size += len(shard.actors)
		shard.mu.RUnlock()
	}
	return size
}

// Actors returns every registered actor sorted by id.
func (d *Directory) Actors() []*Actor {
	var actors []*Actor
	for _, shard := range d.shards {
		shard.mu.RLock()
		for _, actor := range shard.actors {
			actors = append(actors, actor)
		}
		shard.mu.RUnlock()
	}
	sort.Slice(actors, func(i, j int) bool { return actors[i].GetId() < actors[j].GetId() })
	return actors
}
