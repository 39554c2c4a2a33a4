package utils

import (
  "bufio"
  "os"
  "strings"
)

// LoadList reads one lowercased entry per line, skipping blanks.
// Used for the subreddit list file.
func LoadList(filename string) ([]string, error) {
  f, err := os.Open(filename)
  if err != nil {
    return nil, err
  }
  defer f.Close()

  var result []string
  scanner := bufio.NewScanner(f)
  for scanner.Scan() {
    line := strings.ToLower(strings.TrimSpace(scanner.Text()))
    if line == "" {
      continue
    }
    result = append(result, line)
  }
  return result, scanner.Err()
}
