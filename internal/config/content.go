package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"valentine/internal/share"
)

// Content represents the optional config.yaml file. It holds the copy and
// media the client shows, which is easier to edit in YAML than env vars.
type Content struct {
	DeclinePhrases []string `yaml:"decline_phrases"`
	SuccessGIFs    []string `yaml:"success_gifs"`
	MusicURL       string   `yaml:"music_url"`
	ShareMessage   string   `yaml:"share_message"` // {to} and {from} are substituted
}

// DefaultContent returns the built-in copy.
func DefaultContent() *Content {
	return &Content{
		DeclinePhrases: []string{"No", "Are you sure?", "Think again", "Last chance", "...okay wow"},
		SuccessGIFs: []string{
			"https://media.giphy.com/media/KztT2c4u8mYYUiMKdJ/giphy.gif",
		},
		MusicURL:     "https://cdn.pixabay.com/audio/2022/01/21/audio_31742c58a9.mp3",
		ShareMessage: share.DefaultMessage,
	}
}

// LoadContent loads the content file at path. Missing fields keep their
// defaults; a missing file yields the defaults without error.
func LoadContent(path string) (*Content, error) {
	content := DefaultContent()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Content file is optional
			return content, nil
		}
		return nil, err
	}

	var file Content
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	if len(file.DeclinePhrases) > 0 {
		content.DeclinePhrases = file.DeclinePhrases
	}
	if len(file.SuccessGIFs) > 0 {
		content.SuccessGIFs = file.SuccessGIFs
	}
	if file.MusicURL != "" {
		content.MusicURL = file.MusicURL
	}
	if file.ShareMessage != "" {
		content.ShareMessage = file.ShareMessage
	}

	return content, nil
}
