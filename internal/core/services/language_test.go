package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"What are the most common symptoms of the flu in young children?", "English"},
		{"¿Cuáles son los síntomas más comunes de la gripe en los niños pequeños?", "Spanish"},
		{"Welche Symptome treten bei einer Grippe am häufigsten auf und wie lange dauern sie?", "German"},
		{"Quels sont les symptômes les plus courants de la grippe chez les jeunes enfants ?", "French"},
		{"Что делать, если у ребенка высокая температура и кашель?", "Russian"},
		{"流感的常见症状是什么？", "Chinese"},
		{"", DefaultLanguage},
		{"123 456", DefaultLanguage},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(tt.text))
		})
	}
}
