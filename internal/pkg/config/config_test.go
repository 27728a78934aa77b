package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	type args struct {
		configFile  string
		etcdAddress string
		etcdKey     string
	}
	tests := []struct {
		name    string
		args    args
		want    *Config
		wantErr bool
	}{
		{
			name: "test 1",
			args: args{},
			want: &Config{
				Mode:       ModeServer,
				Backlog:    4,
				BufferSize: 80,
			},
		},
		{
			name: "test 2",
			args: args{
				configFile: "../../../configs/tcpecho.yml",
			},
			want: &Config{
				configFile:           "../../../configs/tcpecho.yml",
				Mode:                 ModeServer,
				Port:                 7000,
				Backlog:              4,
				BufferSize:           80,
				PrometheusListenPort: ":9091",
				JournalConn:          "user=postgres password=123 dbname=postgres host=127.0.0.1 port=5432 sslmode=disable",
			},
		},
		{
			name: "test 3",
			args: args{
				configFile: "../../../configs/tcpecho-client.yml",
			},
			want: &Config{
				configFile: "../../../configs/tcpecho-client.yml",
				Mode:       ModeClient,
				IP:         "127.0.0.1",
				Port:       7000,
				Message:    "hello",
				Backlog:    4,
				BufferSize: 80,
			},
		},
		{
			name: "test 4",
			args: args{
				configFile: "../../../configs/tcpecho.ymll",
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewConfig(tt.args.configFile, tt.args.etcdAddress, tt.args.etcdKey)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_Check(t *testing.T) {
	tests := []struct {
		name    string
		yml     string
		wantErr bool
	}{
		{
			name: "test 1",
			yml:  "mode: client\n",
		},
		{
			name:    "test 2",
			yml:     "mode: proxy\n",
			wantErr: true,
		},
		{
			name:    "test 3",
			yml:     "backlog: 0\n",
			wantErr: true,
		},
		{
			name:    "test 4",
			yml:     "buffer_size: 1\n",
			wantErr: true,
		},
		{
			name:    "test 5",
			yml:     "port: [1\n",
			wantErr: true,
		},
	}
	dir, err := ioutil.TempDir("", "tcpecho")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := filepath.Join(dir, tt.name+".yml")
			require.NoError(t, ioutil.WriteFile(f, []byte(tt.yml), 0644))
			if _, err := NewConfig(f, "", ""); (err != nil) != tt.wantErr {
				t.Errorf("NewConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Save(t *testing.T) {
	dir, err := ioutil.TempDir("", "tcpecho")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	f := filepath.Join(dir, "tcpecho.yml")
	require.NoError(t, ioutil.WriteFile(f, []byte("mode: client\n"), 0644))

	s1, err := NewConfig(f, "", "")
	require.NoError(t, err)
	s1.IP = "127.0.0.1"
	s1.Port = 4321
	s1.Message = "Hi gophers!"
	require.NoError(t, s1.Save())

	s2, err := NewConfig(f, "", "")
	require.NoError(t, err)
	assert.Equal(t, s1, s2)

	assert.Equal(t, ErrConfigNotDefined, Default().Save())
}
