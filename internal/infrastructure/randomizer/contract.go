package randomizer

// Randomizer предоставляет абстракцию для рандомизации.
type Randomizer interface {
	// Int63n возвращает случайное число в [0, n). Для n <= 0 возвращает 0.
	Int63n(n int64) int64
}
