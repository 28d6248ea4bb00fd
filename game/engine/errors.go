package engine

import "errors"

var (
	// Flip rejections; the game state is left untouched
	ErrInvalidSelection    = errors.New("invalid card selection")
	ErrGuessesFull         = errors.New("both guesses already made")
	ErrSameCard            = errors.New("card already selected as first guess")
	ErrCardNotInteractable = errors.New("card is not interactable")
	ErrGameOver            = errors.New("game is over")
	ErrRestarting          = errors.New("game is restarting")

	ErrInsufficientVariants = errors.New("insufficient variants")
	ErrInvalidMatches       = errors.New("invalid number of matches")
	ErrInvalidState         = errors.New("invalid game state")
)
