package utils

import "sync"

// ReleaseOnce wraps a release function such that it runs at most once no matter how many exit
// paths call it. The returned function is safe for concurrent use.
func ReleaseOnce(release func()) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			if release != nil {
				release()
			}
		})
	}
}
