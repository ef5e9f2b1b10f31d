package reports

import (
	"sort"

	"github.com/KRaymonne/pro/internal/models"
)

// SessionStats summarizes a set of sessions.
type SessionStats struct {
	TotalSessions      int     `json:"totalLectures"`
	CompletedSessions  int     `json:"lecturesTerminees"`
	AverageScore       float64 `json:"scoresMoyen"`
	TotalDuration      int     `json:"tempsTotal"`
	AverageProgression float64 `json:"progressionMoyenne"`
}

// RecordingStats summarizes a set of recordings.
type RecordingStats struct {
	TotalRecordings   int     `json:"totalEnregistrements"`
	TotalDuration     float64 `json:"dureeTotal"`
	AverageComparison float64 `json:"scoreComparaisonMoyen"`
}

// ScorePoint is one day of the score evolution series.
type ScorePoint struct {
	Date         string  `json:"date"`
	AverageScore float64 `json:"scoreMoyen"`
	Sessions     int     `json:"nombreLectures"`
}

// WordStat is one entry of the difficulty-word frequency list.
type WordStat struct {
	Word            string  `json:"mot"`
	Frequency       int     `json:"frequence"`
	AverageAttempts float64 `json:"tentativesMoyennes"`
}

// Distribution groups the count breakdowns of an individual report.
type Distribution struct {
	ByLevel   map[string]int `json:"niveau"`
	ByTheme   map[string]int `json:"theme"`
	ByQuality map[string]int `json:"qualiteEnregistrements"`
}

// IndividualReport is one student's progress view over a window.
type IndividualReport struct {
	Period         Window         `json:"periode"`
	Sessions       SessionStats   `json:"lectures"`
	Recordings     RecordingStats `json:"enregistrements"`
	Evolution      []ScorePoint   `json:"evolution"`
	Distribution   Distribution   `json:"repartition"`
	DifficultWords []WordStat     `json:"motsDifficiles"`
}

// topWordCount caps the difficulty-word list.
const topWordCount = 10

// BuildIndividualReport aggregates the user's sessions and recordings within
// the window. Sessions must have their poems preloaded for the level/theme
// breakdowns; sessions whose poem is gone are counted but not distributed.
func BuildIndividualReport(window Window, sessions []models.ReadingSession, recordings []models.Recording) *IndividualReport {
	report := &IndividualReport{
		Period:         window,
		Sessions:       summarizeSessions(sessions),
		Recordings:     summarizeRecordings(recordings),
		Evolution:      scoreEvolution(sessions),
		DifficultWords: difficultWords(sessions),
		Distribution: Distribution{
			ByLevel:   map[string]int{},
			ByTheme:   map[string]int{},
			ByQuality: map[string]int{},
		},
	}

	for _, s := range sessions {
		if s.Poem == nil {
			continue
		}
		report.Distribution.ByLevel[s.Poem.Level]++
		report.Distribution.ByTheme[s.Poem.Theme]++
	}
	for _, r := range recordings {
		report.Distribution.ByQuality[r.Quality]++
	}

	return report
}

func summarizeSessions(sessions []models.ReadingSession) SessionStats {
	var stats SessionStats
	var scoreSum, progressionSum float64
	var scored int

	for _, s := range sessions {
		stats.TotalSessions++
		if s.Status == models.StatusCompleted {
			stats.CompletedSessions++
		}
		if s.Score != nil {
			scoreSum += *s.Score
			scored++
		}
		if s.Duration != nil {
			stats.TotalDuration += *s.Duration
		}
		progressionSum += s.Progression
	}

	if scored > 0 {
		stats.AverageScore = scoreSum / float64(scored)
	}
	if stats.TotalSessions > 0 {
		stats.AverageProgression = progressionSum / float64(stats.TotalSessions)
	}
	return stats
}

func summarizeRecordings(recordings []models.Recording) RecordingStats {
	var stats RecordingStats
	var comparisonSum float64
	var compared int

	for _, r := range recordings {
		stats.TotalRecordings++
		stats.TotalDuration += r.Duration
		if r.ComparisonScore != nil {
			comparisonSum += *r.ComparisonScore
			compared++
		}
	}
	if compared > 0 {
		stats.AverageComparison = comparisonSum / float64(compared)
	}
	return stats
}

// scoreEvolution averages scores per calendar day, for days with at least one
// scored session, in chronological order.
func scoreEvolution(sessions []models.ReadingSession) []ScorePoint {
	type bucket struct {
		sum float64
		n   int
	}
	days := map[string]*bucket{}

	for _, s := range sessions {
		if s.Score == nil {
			continue
		}
		day := s.StartedAt.Format("2006-01-02")
		b := days[day]
		if b == nil {
			b = &bucket{}
			days[day] = b
		}
		b.sum += *s.Score
		b.n++
	}

	points := make([]ScorePoint, 0, len(days))
	for day, b := range days {
		points = append(points, ScorePoint{
			Date:         day,
			AverageScore: b.sum / float64(b.n),
			Sessions:     b.n,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

// difficultWords returns the most frequent stumble words with their mean
// attempt counts, most frequent first.
func difficultWords(sessions []models.ReadingSession) []WordStat {
	type bucket struct {
		frequency   int
		attemptsSum int
	}
	words := map[string]*bucket{}

	for _, s := range sessions {
		for _, w := range s.DifficultWords {
			b := words[w.Word]
			if b == nil {
				b = &bucket{}
				words[w.Word] = b
			}
			b.frequency++
			b.attemptsSum += w.Attempts
		}
	}

	stats := make([]WordStat, 0, len(words))
	for word, b := range words {
		stats = append(stats, WordStat{
			Word:            word,
			Frequency:       b.frequency,
			AverageAttempts: float64(b.attemptsSum) / float64(b.frequency),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Frequency != stats[j].Frequency {
			return stats[i].Frequency > stats[j].Frequency
		}
		return stats[i].Word < stats[j].Word
	})

	if len(stats) > topWordCount {
		stats = stats[:topWordCount]
	}
	return stats
}
