package domain_test

import (
	"testing"

	"github.com/aretw0/facet/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestParentDomain(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"sub.example.com", ".example.com"},
		{"a.b.example.com", ".example.com"},
		{"example.com", ".example.com"},
		{"WWW.Example.COM", ".Example.COM"},
		{"my-app.example-site.org", ".example-site.org"},
		{"localhost", "localhost"},
		{"127.0.0.1", "127.0.0.1"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ParentDomain(tt.host))
		})
	}
}
