package utils

import (
  "os"
  "testing"
)

func TestGetEnv(t *testing.T) {
  tests := []struct {
    name       string
    key        string
    envValue   string
    defaultVal string
    expected   string
  }{
    {"uses env value", "PAGECRAFT_TEST_STR_1", "hello", "default", "hello"},
    {"uses default when unset", "PAGECRAFT_TEST_STR_2", "", "default", "default"},
  }

  for _, tc := range tests {
    t.Run(tc.name, func(t *testing.T) {
      if tc.envValue != "" {
        os.Setenv(tc.key, tc.envValue)
        defer os.Unsetenv(tc.key)
      }
      result := GetEnv(tc.key, tc.defaultVal, nil)
      if result != tc.expected {
        t.Errorf("Expected %q, got %q", tc.expected, result)
      }
    })
  }
}

func TestGetEnvAsInt(t *testing.T) {
  tests := []struct {
    name       string
    key        string
    envValue   string
    defaultVal int
    expected   int
  }{
    {"parses integer", "PAGECRAFT_TEST_INT_1", "42", 10, 42},
    {"uses default when unset", "PAGECRAFT_TEST_INT_2", "", 10, 10},
    {"uses default for non-numeric", "PAGECRAFT_TEST_INT_3", "abc", 10, 10},
  }

  for _, tc := range tests {
    t.Run(tc.name, func(t *testing.T) {
      if tc.envValue != "" {
        os.Setenv(tc.key, tc.envValue)
        defer os.Unsetenv(tc.key)
      }
      result := GetEnvAsInt(tc.key, tc.defaultVal, nil)
      if result != tc.expected {
        t.Errorf("Expected %d, got %d", tc.expected, result)
      }
    })
  }
}

func TestGetEnvAsSlice(t *testing.T) {
  os.Setenv("PAGECRAFT_TEST_SLICE", "http://localhost:3000, https://pagecraft.app ,")
  defer os.Unsetenv("PAGECRAFT_TEST_SLICE")

  result := GetEnvAsSlice("PAGECRAFT_TEST_SLICE", []string{"fallback"}, nil)
  if len(result) != 2 || result[0] != "http://localhost:3000" || result[1] != "https://pagecraft.app" {
    t.Errorf("Unexpected slice: %#v", result)
  }

  fallback := GetEnvAsSlice("PAGECRAFT_TEST_SLICE_MISSING", []string{"fallback"}, nil)
  if len(fallback) != 1 || fallback[0] != "fallback" {
    t.Errorf("Unexpected fallback slice: %#v", fallback)
  }
}
