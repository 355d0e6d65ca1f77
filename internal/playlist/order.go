package playlist

import (
	"sort"
	"strings"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/rayers1001/recommendations-ml-spotify/internal/db"
)

const (
	// themeClusters is how many tag themes to group the playlist into.
	themeClusters = 3

	// maxVocabulary caps the tag vector dimensionality.
	maxVocabulary = 50
)

// trackObservation wraps a playlist track to implement clusters.Observation.
type trackObservation struct {
	index  int // position in the rating-ordered input
	coords clusters.Coordinates
}

func (o trackObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o trackObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// OrderByTheme regroups a rating-ordered track list so that tracks
// sharing a tag theme play together. Groups are found with k-means over
// tag vectors; larger groups come first and the rating order is kept
// inside each group. When the list is too small, tags are missing, or
// clustering fails, the input order is returned unchanged.
func OrderByTheme(tracks []db.PlaylistTrack) []db.PlaylistTrack {
	if len(tracks) < themeClusters*2 {
		return tracks
	}

	for _, t := range tracks {
		if len(t.Tags) == 0 {
			return tracks
		}
	}

	vocabulary := buildTagVocabulary(tracks, maxVocabulary)
	if len(vocabulary) == 0 {
		return tracks
	}

	observations := make(clusters.Observations, len(tracks))
	for i := range tracks {
		observations[i] = trackObservation{
			index:  i,
			coords: buildTagVector(tracks[i].Tags, vocabulary),
		}
	}

	km := kmeans.New()
	result, err := km.Partition(observations, themeClusters)
	if err != nil {
		return tracks
	}

	// Collect input indexes per cluster, keeping rating order inside.
	groups := make([][]int, 0, len(result))
	for _, cluster := range result {
		indexes := make([]int, 0, len(cluster.Observations))
		for _, obs := range cluster.Observations {
			if to, ok := obs.(trackObservation); ok {
				indexes = append(indexes, to.index)
			}
		}
		if len(indexes) == 0 {
			continue
		}
		sort.Ints(indexes)
		groups = append(groups, indexes)
	}

	// Larger themes first; ties broken by the best-rated member.
	sort.SliceStable(groups, func(i, j int) bool {
		if len(groups[i]) != len(groups[j]) {
			return len(groups[i]) > len(groups[j])
		}
		return groups[i][0] < groups[j][0]
	})

	ordered := make([]db.PlaylistTrack, 0, len(tracks))
	for _, group := range groups {
		for _, idx := range group {
			ordered = append(ordered, tracks[idx])
		}
	}

	// Clustering must only permute the input.
	if len(ordered) != len(tracks) {
		return tracks
	}
	return ordered
}

// tagCount tracks tag name and weighted occurrence across all tracks.
type tagCount struct {
	name  string
	count float64
}

// buildTagVocabulary collects tags across the playlist and returns the
// top N by weighted occurrence. Earlier tag positions weigh more.
func buildTagVocabulary(tracks []db.PlaylistTrack, maxTags int) []string {
	counts := make(map[string]float64)
	for _, t := range tracks {
		for pos, tag := range t.Tags {
			name := strings.ToLower(tag)
			counts[name] += tagWeight(pos)
		}
	}

	tagCounts := make([]tagCount, 0, len(counts))
	for name, count := range counts {
		tagCounts = append(tagCounts, tagCount{name: name, count: count})
	}

	sort.Slice(tagCounts, func(i, j int) bool {
		if tagCounts[i].count != tagCounts[j].count {
			return tagCounts[i].count > tagCounts[j].count
		}
		return tagCounts[i].name < tagCounts[j].name
	})

	n := min(maxTags, len(tagCounts))
	vocabulary := make([]string, n)
	for i := 0; i < n; i++ {
		vocabulary[i] = tagCounts[i].name
	}
	return vocabulary
}

// buildTagVector creates a feature vector from an ordered tag list.
// Values decay with tag position so a track's leading tags dominate.
func buildTagVector(tags []string, vocabulary []string) clusters.Coordinates {
	vocabIndex := make(map[string]int, len(vocabulary))
	for i, tag := range vocabulary {
		vocabIndex[tag] = i
	}

	vector := make(clusters.Coordinates, len(vocabulary))
	for pos, tag := range tags {
		if idx, ok := vocabIndex[strings.ToLower(tag)]; ok {
			vector[idx] = tagWeight(pos)
		}
	}
	return vector
}

// tagWeight maps a 0-based tag position to a weight in (0, 1].
func tagWeight(position int) float64 {
	return 1.0 / float64(position+1)
}
