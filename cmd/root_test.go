// Copyright 2026 Google LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultFlags(t *testing.T) {
	c := NewCommand()
	require.Equal(t, "0.0.0.0", c.address)
	require.Equal(t, 8080, c.port)
	require.Equal(t, "standard", c.loggingFormat)
	require.Equal(t, "info", c.logLevel)
}

func TestFlagsOverrideDefaults(t *testing.T) {
	c := NewCommand()
	err := c.Command.ParseFlags([]string{
		"--address", "127.0.0.1",
		"--port", "9090",
		"--logging-format", "json",
		"--log-level", "debug",
		"--profile", "prod",
		"--yml-dir", "config",
	})
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1", c.address)
	require.Equal(t, 9090, c.port)
	require.Equal(t, "json", c.loggingFormat)
	require.Equal(t, "debug", c.logLevel)
	require.Equal(t, "prod", c.profile)
	require.Equal(t, "config", c.ymlDir)
}
