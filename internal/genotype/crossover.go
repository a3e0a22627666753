package genotype

import (
	"neurowire/internal/agent"
	"neurowire/internal/nn"
	"neurowire/internal/rng"
)

// Breeding summarizes how one offspring's links were drawn.
type Breeding struct {
	LinkCount    int
	CountMutated bool
	Inherited    int
	Mutated      int
	Synthesized  int
}

// FromParents breeds one offspring. Parents may be the same entity.
func (b *Builder[P]) FromParents(props *P, first, second *agent.Entity[P]) (*agent.Entity[P], Breeding, error) {
	neurons := nn.NewNeurons[P](b.cfg.NeuronCount)
	sensors, actuators := b.endpoints(neurons)

	count, countMutated := b.offspringLinkCount(first.LinkCount(), second.LinkCount())
	report := Breeding{LinkCount: count, CountMutated: countMutated}

	pool := newLinkPool(first, second)
	links := make([]nn.Link[P], 0, count)
	for len(links) < count {
		if pool.empty() {
			links = append(links, nn.RandomLink(b.cfg.Random, sensors, actuators))
			report.Synthesized++
			continue
		}
		bucket := pool.take(b.cfg.Random)
		if rng.Bool(b.cfg.Random, b.cfg.MutationRate) {
			links = append(links, bucket[0].WithRandomStrength(b.cfg.Random))
			report.Mutated++
			continue
		}
		links = append(links, rng.Choice(b.cfg.Random, bucket))
		report.Inherited++
	}

	offspring, err := agent.NewEntity(props, neurons, links)
	if err != nil {
		return nil, Breeding{}, err
	}
	return offspring, report, nil
}

// offspringLinkCount draws from [lo, hi] of the parents' link counts, or
// with the mutation rate shifts one edge below lo or above hi.
func (b *Builder[P]) offspringLinkCount(a, c int) (int, bool) {
	lo, hi := min(a, c), max(a, c)
	if rng.Bool(b.cfg.Random, b.cfg.MutationRate) {
		if rng.Coin(b.cfg.Random) {
			return max(lo-1, 0), true
		}
		return min(hi+1, b.cfg.MaxLinks), true
	}
	return rng.IntInclusive(b.cfg.Random, lo, hi), false
}

// linkPool groups parent links by edge identity. Keys keep first-seen order
// so draws are reproducible for a seed.
type linkPool[P any] struct {
	keys    []nn.EdgeKey
	buckets map[nn.EdgeKey][]nn.Link[P]
}

func newLinkPool[P any](parents ...*agent.Entity[P]) *linkPool[P] {
	p := &linkPool[P]{buckets: make(map[nn.EdgeKey][]nn.Link[P])}
	for _, parent := range parents {
		for _, link := range parent.Links() {
			key := link.Key()
			if _, ok := p.buckets[key]; !ok {
				p.keys = append(p.keys, key)
			}
			p.buckets[key] = append(p.buckets[key], link)
		}
	}
	return p
}

func (p *linkPool[P]) empty() bool {
	return len(p.keys) == 0
}

// take removes a uniformly chosen bucket from the pool and returns it.
func (p *linkPool[P]) take(src rng.Source) []nn.Link[P] {
	i := src.Intn(len(p.keys))
	key := p.keys[i]
	p.keys = append(p.keys[:i], p.keys[i+1:]...)
	bucket := p.buckets[key]
	delete(p.buckets, key)
	return bucket
}
