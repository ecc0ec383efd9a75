package annotation

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
)

// Run labels images from line commands read from r:
//
//	p      next clicks are positive examples
//	n      next clicks are negative examples
//	r      remove the last point of the current mode
//	c      move on to the next image
//	q      quit, keeping the current image's record
//	X Y    click at pixel (X, Y); "X,Y" is accepted too
//
// Unknown lines are ignored. Running out of input behaves like q. One record is
// returned per image shown.
func Run(r io.Reader, images []string, s *Session) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	records := make([]Record, 0, len(images))

	for _, img := range images {
		s.Begin(img)
		log.Printf("[Annotate] %s (mode: %s)", img, s.Mode())

		quit, err := runImage(scanner, s)
		records = append(records, s.Finish())
		if err != nil {
			return records, err
		}
		if quit {
			break
		}
	}
	return records, nil
}

// runImage consumes commands until the image is done. It returns true when the
// batch should stop.
func runImage(scanner *bufio.Scanner, s *Session) (bool, error) {
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "p":
			s.SetMode(Positive)
		case "n":
			s.SetMode(Negative)
		case "r":
			if p, ok := s.Undo(); ok {
				log.Printf("[Annotate] Removed %s point %s", s.Mode(), p.Key())
			}
		case "c":
			return false, nil
		case "q":
			return true, nil
		default:
			x, y, err := parseClick(line)
			if err != nil {
				log.Printf("[Annotate] Ignoring %q", line)
				continue
			}
			s.Click(x, y)
		}
	}
	if err := scanner.Err(); err != nil {
		return true, fmt.Errorf("failed to read commands: %w", err)
	}
	return true, nil
}

func parseClick(line string) (int, int, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' })
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("expected two coordinates, got %d", len(fields))
	}
	x, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}
