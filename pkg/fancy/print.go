package fancy

import (
	"fmt"
	"io"

	"github.com/kyokomi/emoji/v2"
	"github.com/logrusorgru/aurora"
)

var (
	Info    = aurora.White
	Warn    = aurora.Yellow
	Error   = aurora.Red
	Success = aurora.Green
	Muted   = aurora.BrightBlack
)

type Level = func(arg any) aurora.Value

// Pill renders the service health indicator.
func Pill(ok bool) string {
	if ok {
		return emoji.Sprint(":green_circle: ") + Success("DB Connected").String()
	}
	return emoji.Sprint(":red_circle: ") + Error("DB Not Connected").String()
}

// Status renders a short outcome message such as "Copied.".
func Status(ok bool, msg string) string {
	if ok {
		return emoji.Sprint(":white_check_mark: ") + Success(msg).String()
	}
	return emoji.Sprint(":x: ") + Error(msg).String()
}

func Println(level Level, args ...any) {
	fmt.Println(level(fmt.Sprint(args...)))
}

func Printf(level Level, format string, args ...any) {
	fmt.Print(level(fmt.Sprintf(format, args...)))
}

func Infoln(args ...any) {
	Println(Info, args...)
}

func Infof(format string, args ...any) {
	Printf(Info, format, args...)
}

func Warnln(args ...any) {
	Println(Warn, args...)
}

func Errorln(args ...any) {
	Println(Error, args...)
}

func Fprintln(w io.Writer, level Level, args ...any) {
	_, _ = fmt.Fprintln(w, level(fmt.Sprint(args...)))
}

func Fprintf(w io.Writer, level Level, format string, args ...any) {
	_, _ = fmt.Fprint(w, level(fmt.Sprintf(format, args...)))
}

func Finfoln(w io.Writer, args ...any) {
	Fprintln(w, Info, args...)
}

func Fwarnln(w io.Writer, args ...any) {
	Fprintln(w, Warn, args...)
}

func Ferrorln(w io.Writer, args ...any) {
	Fprintln(w, Error, args...)
}

func Fmutedln(w io.Writer, args ...any) {
	Fprintln(w, Muted, args...)
}
