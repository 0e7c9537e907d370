package domain

import "sort"

// GenreAffinities counts watched movies per genre. A movie with N genres
// contributes to N counters.
func GenreAffinities(watched []Movie) map[string]int {
	affinities := make(map[string]int)

	for _, movie := range watched {
		for _, genre := range movie.Genres {
			affinities[genre]++
		}
	}

	return affinities
}

// RecommendMovies filters the currently showing movies to those sharing at
// least one genre with the customer's watched set and orders them by
// descending shared-genre count. Ties are broken by the combined affinity of
// the shared genres, then by input order.
func RecommendMovies(watched, showing []Movie) []Movie {
	affinities := GenreAffinities(watched)

	type scored struct {
		movie    Movie
		shared   int
		affinity int
	}

	ranked := make([]scored, 0, len(showing))

	for _, movie := range showing {
		shared, affinity := 0, 0

		for _, genre := range movie.Genres {
			if count, ok := affinities[genre]; ok {
				shared++
				affinity += count
			}
		}

		if shared == 0 {
			continue
		}

		ranked = append(ranked, scored{movie: movie, shared: shared, affinity: affinity})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].shared != ranked[j].shared {
			return ranked[i].shared > ranked[j].shared
		}

		return ranked[i].affinity > ranked[j].affinity
	})

	movies := make([]Movie, len(ranked))
	for i, r := range ranked {
		movies[i] = r.movie
	}

	return movies
}
