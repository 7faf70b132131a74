//go:build wasip1

package main

//go:wasmexport malloc
func malloc(size uint32) uint32 { return mod.Malloc(size) }

//go:wasmexport free
func free(ptr uint32) { mod.Free(ptr) }

//go:wasmexport build_matcher
func buildMatcher(bytesPtr, bytesLen, lensPtr, n, asciiCI, kind, engine uint32) uint32 {
	return mod.BuildMatcher(bytesPtr, bytesLen, lensPtr, n, asciiCI, kind, engine)
}

//go:wasmexport build_matcher_packed
func buildMatcherPacked(ptr, length, asciiCI, kind, engine uint32) uint32 {
	return mod.BuildMatcherPacked(ptr, length, asciiCI, kind, engine)
}

//go:wasmexport destroy_matcher
func destroyMatcher(matcher uint32) { mod.DestroyMatcher(matcher) }

//go:wasmexport pattern_count
func patternCount(matcher uint32) uint32 { return mod.PatternCount(matcher) }

//go:wasmexport open_sequential_iterator
func openSequentialIterator(matcher, ptr, length uint32) uint32 {
	return mod.OpenSequentialIterator(matcher, ptr, length)
}

//go:wasmexport sequential_iterator_next
func sequentialIteratorNext(iter, patternOut, startOut, endOut uint32) uint32 {
	return mod.SequentialIteratorNext(iter, patternOut, startOut, endOut)
}

//go:wasmexport close_sequential_iterator
func closeSequentialIterator(iter uint32) { mod.CloseSequentialIterator(iter) }

//go:wasmexport open_overlapping_iterator
func openOverlappingIterator(matcher, ptr, length uint32) uint32 {
	return mod.OpenOverlappingIterator(matcher, ptr, length)
}

//go:wasmexport overlapping_iterator_next
func overlappingIteratorNext(iter, patternOut, startOut, endOut uint32) uint32 {
	return mod.OverlappingIteratorNext(iter, patternOut, startOut, endOut)
}

//go:wasmexport close_overlapping_iterator
func closeOverlappingIterator(iter uint32) { mod.CloseOverlappingIterator(iter) }

//go:wasmexport find_matches
func findMatches(matcher, ptr, length, limit, countOut uint32) uint32 {
	return mod.FindMatches(matcher, ptr, length, limit, countOut)
}

//go:wasmexport destroy_match_buffer
func destroyMatchBuffer(ptr, count uint32) { mod.DestroyMatchBuffer(ptr, count) }

//go:wasmexport is_match
func isMatch(matcher, ptr, length uint32) uint32 { return mod.IsMatch(matcher, ptr, length) }

//go:wasmexport last_error
func lastError() uint32 { return mod.LastError() }

//go:wasmexport last_error_message
func lastErrorMessage(bufPtr, bufCap uint32) uint32 { return mod.LastErrorMessage(bufPtr, bufCap) }
