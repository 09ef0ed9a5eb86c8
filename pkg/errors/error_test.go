package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.NotNil(err)
	suite.Equal(ErrCodeInvalidParameter, err.Code)
	suite.Equal("invalid parameter", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestNewfError() {
	err := Newf(ErrCodeInvalidParameter, "invalid parameter: %s", "test")
	suite.NotNil(err)
	suite.Equal(ErrCodeInvalidParameter, err.Code)
	suite.Equal("invalid parameter: test", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestWrapError() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeDataNotFound, "data not found", cause)
	suite.NotNil(err)
	suite.Equal(ErrCodeDataNotFound, err.Code)
	suite.Equal("data not found", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestWrapfError() {
	cause := errors.New("underlying error")
	err := Wrapf(ErrCodeDataNotFound, cause, "data not found for symbol: %s", "AAPL")
	suite.NotNil(err)
	suite.Equal(ErrCodeDataNotFound, err.Code)
	suite.Equal("data not found for symbol: AAPL", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestErrorString() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.Equal("[100] invalid parameter", err.Error())
}

func (suite *ErrorTestSuite) TestErrorStringWithCause() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeDataNotFound, "data not found", cause)
	suite.Equal("[200] data not found: underlying error", err.Error())
}

func (suite *ErrorTestSuite) TestUnwrap() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeDataNotFound, "data not found", cause)
	suite.Equal(cause, err.Unwrap())
}

func (suite *ErrorTestSuite) TestUnwrapNil() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.Nil(err.Unwrap())
}

func (suite *ErrorTestSuite) TestGetCode() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.Equal(ErrCodeInvalidParameter, GetCode(err))
}

func (suite *ErrorTestSuite) TestGetCodeFromWrapped() {
	cause := New(ErrCodeDataNotFound, "data not found")
	err := Wrap(ErrCodeIndicatorNotFound, "indicator not found", cause)
	// GetCode should return the outermost error's code
	suite.Equal(ErrCodeIndicatorNotFound, GetCode(err))
}

func (suite *ErrorTestSuite) TestGetCodeFromNonArgoError() {
	err := errors.New("standard error")
	suite.Equal(ErrCodeUnknown, GetCode(err))
}

func (suite *ErrorTestSuite) TestHasCode() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.True(HasCode(err, ErrCodeInvalidParameter))
	suite.False(HasCode(err, ErrCodeDataNotFound))
}

func (suite *ErrorTestSuite) TestChainHasCode() {
	inner := New(ErrCodeInvalidTimespan, "bad interval")
	outer := Wrap(ErrCodeMarketDataFetchFailed, "download failed", fmt.Errorf("provider: %w", inner))

	suite.True(ChainHasCode(outer, ErrCodeMarketDataFetchFailed))
	suite.True(ChainHasCode(outer, ErrCodeInvalidTimespan))
	suite.False(HasCode(outer, ErrCodeInvalidTimespan))
	suite.False(ChainHasCode(outer, ErrCodeQueryFailed))
	suite.False(ChainHasCode(errors.New("plain"), ErrCodeUnknown))
	suite.False(ChainHasCode(nil, ErrCodeUnknown))
}

func (suite *ErrorTestSuite) TestIsError() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeDataNotFound, "data not found", cause)
	suite.True(Is(err, cause))
}

func (suite *ErrorTestSuite) TestAsError() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	var argoErr *Error
	suite.True(As(err, &argoErr))
	suite.Equal(ErrCodeInvalidParameter, argoErr.Code)
}

func (suite *ErrorTestSuite) TestErrorCodeValues() {
	suite.Equal(ErrorCode(1), ErrCodeUnknown)
	suite.Equal(ErrorCode(100), ErrCodeInvalidParameter)
	suite.Equal(ErrorCode(200), ErrCodeDataNotFound)
	suite.Equal(ErrorCode(300), ErrCodeIndicatorNotFound)
	suite.Equal(ErrorCode(400), ErrCodePatternNotFound)
	suite.Equal(ErrorCode(500), ErrCodeEngineNotPrepared)
	suite.Equal(ErrorCode(700), ErrCodeMarketDataFetchFailed)
}

func (suite *ErrorTestSuite) TestInsufficientDataError() {
	tests := []struct {
		name     string
		err      *InsufficientDataError
		expected string
	}{
		{
			name:     "with symbol",
			err:      NewInsufficientDataError(20, 5, "AAPL", "insufficient data for EMA"),
			expected: "AAPL: insufficient data for EMA (required 20, got 5)",
		},
		{
			name:     "without symbol",
			err:      NewInsufficientDataError(14, 10, "", "insufficient data for RSI"),
			expected: "insufficient data for RSI (required 14, got 10)",
		},
		{
			name:     "formatted",
			err:      NewInsufficientDataErrorf(26, 3, "", "insufficient data for period %d", 26),
			expected: "insufficient data for period 26 (required 26, got 3)",
		},
	}

	for _, tc := range tests {
		tc := tc
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, tc.err.Error())
			suite.True(IsInsufficientDataError(tc.err))
			suite.True(IsDataError(tc.err))
			suite.False(IsMalformedBarError(tc.err))
		})
	}
}

func (suite *ErrorTestSuite) TestMalformedBarError() {
	err := NewMalformedBarError(3, "high", "value is absent")
	suite.Equal("malformed bar 3 (high): value is absent", err.Error())
	suite.True(IsMalformedBarError(err))
	suite.True(IsDataError(err))
	suite.False(IsInsufficientDataError(err))
}

func (suite *ErrorTestSuite) TestIsDataError() {
	suite.False(IsDataError(nil))
	suite.False(IsDataError(errors.New("standard error")))
	suite.False(IsDataError(New(ErrCodeInvalidParameter, "invalid parameter")))

	wrapped := Wrap(ErrCodeIndicatorCalculation, "ema failed", NewInsufficientDataError(10, 2, "", "short"))
	suite.True(IsDataError(wrapped))
}

func (suite *ErrorTestSuite) TestWithSymbol() {
	insufficient := WithSymbol(NewInsufficientDataError(10, 2, "", "short"), "MSFT")
	var target *InsufficientDataError
	suite.Require().True(As(insufficient, &target))
	suite.Equal("MSFT", target.Symbol)

	malformed := WithSymbol(NewMalformedBarError(1, "low", "absent"), "TSLA")
	suite.Equal("TSLA: malformed bar 1 (low): absent", malformed.Error())

	plain := errors.New("boom")
	suite.Equal(plain, WithSymbol(plain, "AAPL"))

	// an existing symbol is kept
	kept := WithSymbol(NewInsufficientDataError(10, 2, "AAPL", "short"), "MSFT")
	suite.Contains(kept.Error(), "AAPL")
}
