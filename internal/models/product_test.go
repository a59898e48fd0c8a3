package models_test

import (
	"testing"

	"catalog/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Women's Puffer Jacket", "womens-puffer-jacket"},
		{"Red Shoes", "red-shoes"},
		{"already-normalized", "already-normalized"},
		{"UPPER CASE TITLE", "upper-case-title"},
		{"rock'n'roll tee", "rocknroll-tee"},
		{"", ""},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, models.NormalizeSlug(c.in))
	}
}

func TestNormalizeSlug_Idempotent(t *testing.T) {
	titles := []string{
		"Women's Puffer Jacket",
		"Men's Chill Crew Neck Sweatshirt",
		"Red Shoes",
		"plain",
	}

	for _, title := range titles {
		once := models.NormalizeSlug(title)
		twice := models.NormalizeSlug(once)
		assert.Equal(t, once, twice, "normalizing twice must be a no-op for %q", title)
	}
}

func TestProduct_ImageURLs(t *testing.T) {
	product := models.Product{
		Images: []models.ProductImage{
			{ID: 1, URL: "first.jpg"},
			{ID: 2, URL: "second.jpg"},
			{ID: 3, URL: "third.jpg"},
		},
	}

	assert.Equal(t, []string{"first.jpg", "second.jpg", "third.jpg"}, product.ImageURLs())

	empty := models.Product{}
	assert.Empty(t, empty.ImageURLs())
	assert.NotNil(t, empty.ImageURLs())
}
