package wakfulog

import "os"

// readLastNLines reads the last n non-empty lines of a file by scanning
// backwards in chunks, returning them oldest-first.
//
// maxBytes caps the total bytes read and maxLineBytes caps any single
// line; 0 disables the respective limit. ErrReplayLimitExceeded is
// returned when a limit is hit.
func readLastNLines(path string, n, maxBytes, maxLineBytes int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := stat.Size()
	if size == 0 {
		return nil, nil
	}

	const chunkSize = 4096
	var (
		lines      []string
		carry      []byte // incomplete line left of the last chunk
		offset     = size
		totalBytes int
	)

	for len(lines) < n && offset > 0 {
		readSize := int64(chunkSize)
		if offset < readSize {
			readSize = offset
		}
		offset -= readSize

		if maxBytes > 0 && totalBytes+int(readSize)+len(carry) > maxBytes {
			return nil, ErrReplayLimitExceeded
		}

		chunk := make([]byte, readSize)
		if _, err := f.ReadAt(chunk, offset); err != nil {
			return nil, err
		}
		totalBytes += int(readSize)

		// The carry belongs after this chunk in file order.
		chunk = append(chunk, carry...)

		newLines, newCarry := extractLinesBackward(chunk, n-len(lines), maxLineBytes)
		if newCarry == nil && maxLineBytes > 0 && len(chunk) > maxLineBytes {
			return nil, ErrReplayLimitExceeded
		}
		if len(newLines) > 0 {
			lines = append(newLines, lines...)
		}
		carry = newCarry
	}

	// A line at the very start of the file has no leading newline.
	if offset == 0 && len(carry) > 0 {
		if maxLineBytes > 0 && len(carry) > maxLineBytes {
			return nil, ErrReplayLimitExceeded
		}
		if line := trimCR(string(carry)); line != "" {
			lines = append([]string{line}, lines...)
			if len(lines) > n {
				lines = lines[len(lines)-n:]
			}
		}
	}
	return lines, nil
}

// extractLinesBackward collects complete lines from buffer, oldest
// first, and returns the incomplete prefix as carry. A nil carry with a
// long buffer signals a line over maxLineBytes.
func extractLinesBackward(buffer []byte, maxLines, maxLineBytes int) ([]string, []byte) {
	var lines []string
	end := len(buffer)

	for i := len(buffer) - 1; i >= 0; i-- {
		if buffer[i] != '\n' {
			continue
		}
		lineBytes := buffer[i+1 : end]
		if maxLineBytes > 0 && len(lineBytes) > maxLineBytes {
			return lines, nil
		}
		if line := trimCR(string(lineBytes)); line != "" {
			lines = append([]string{line}, lines...)
		}
		end = i
	}

	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return lines, buffer[:end]
}

func trimCR(line string) string {
	if len(line) > 0 && line[len(line)-1] == '\r' {
		return line[:len(line)-1]
	}
	return line
}
