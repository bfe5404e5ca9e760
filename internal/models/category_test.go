package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want Category
	}{
		{"plain live stream", "http://example.com/live/user/pass/1234.ts", CategoryChannels},
		{"movie segment", "http://example.com/movie/user/pass/5678.mp4", CategoryMovies},
		{"movies segment", "http://example.com/movies/action/5678.mp4", CategoryMovies},
		{"series substring", "http://example.com/series/user/pass/91011.mkv", CategorySeries},
		{"series in filename", "http://example.com/vod/myseries-s01e01.mkv", CategorySeries},
		{"movie wins over series", "http://example.com/movie/series/1.mp4", CategoryMovies},
		{"movie substring alone is not a match", "http://example.com/allmovies/1.ts", CategoryChannels},
		{"case insensitive", "http://example.com/MOVIE/1.mp4", CategoryMovies},
		{"query does not contribute", "http://example.com/live/1.ts?type=movie", CategoryChannels},
		{"fragment does not contribute", "http://example.com/live/1.ts#series", CategoryChannels},
		{"movie in hostname is not a path segment", "rtsp://movie.example.com/live/1", CategoryChannels},
		{"empty url", "", CategoryChannels},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.url))
		})
	}
}

func TestCategorizeDeterministic(t *testing.T) {
	url := "http://example.com/movie/user/pass/5678.mp4"
	first := Categorize(url)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Categorize(url))
	}
}

func TestCategoryIsValid(t *testing.T) {
	assert.True(t, CategoryChannels.IsValid())
	assert.True(t, CategoryMovies.IsValid())
	assert.True(t, CategorySeries.IsValid())
	assert.False(t, Category("radio").IsValid())
	assert.False(t, Category("").IsValid())
}
