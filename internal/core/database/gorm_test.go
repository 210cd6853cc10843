package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		user, pass string
		want       string
	}{
		{
			name: "native dsn untouched",
			in:   "root:pw@tcp(127.0.0.1:3306)/domains?parseTime=true",
			want: "root:pw@tcp(127.0.0.1:3306)/domains?parseTime=true",
		},
		{
			name: "url form gets defaults",
			in:   "mysql://root:pw@db:3306/domains",
			want: "root:pw@tcp(db:3306)/domains?charset=utf8mb4&parseTime=true",
		},
		{
			name: "jdbc params translated",
			in:   "jdbc:mysql://db:3306/domains?useSSL=false&serverTimezone=UTC&characterEncoding=utf8&useUnicode=true",
			user: "app",
			pass: "secret",
			want: "app:secret@tcp(db:3306)/domains?charset=utf8&loc=UTC&parseTime=true&tls=false",
		},
		{
			name: "query credentials and overrides",
			in:   "mysql://db:3306/domains?user=a&password=b&parseTime=false",
			pass: "c",
			want: "a:c@tcp(db:3306)/domains?charset=utf8mb4&parseTime=false",
		},
		{
			name: "empty",
			in:   "  ",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeMySQLDSN(tt.in, tt.user, tt.pass))
		})
	}
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "root:****@tcp(db:3306)/x", MaskDSN("root:pw@tcp(db:3306)/x"))
	assert.Equal(t, "root@tcp(db:3306)/x", MaskDSN("root@tcp(db:3306)/x"))
	assert.Equal(t, "tcp(db)/x", MaskDSN("tcp(db)/x"))
}

func TestNewGorm_UnsupportedDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}
