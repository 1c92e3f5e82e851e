// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package textproc

import "testing"

func TestDetectLanguageShortInputDefaultsToEnglish(t *testing.T) {
	if got := DetectLanguage("hi"); got != "en" {
		t.Errorf("DetectLanguage(short) = %q, want en", got)
	}
}

func TestDetectLanguageEnglish(t *testing.T) {
	text := "The military forces launched an offensive and the government responded with artillery fire."
	if got := DetectLanguage(text); got != "en" {
		t.Errorf("DetectLanguage(english) = %q, want en", got)
	}
}

func TestDetectLanguageSpanish(t *testing.T) {
	text := "Las fuerzas militares lanzaron una ofensiva que dejó decenas de muertos en la región."
	if got := DetectLanguage(text); got != "es" {
		t.Errorf("DetectLanguage(spanish) = %q, want es", got)
	}
}

func TestDetectLanguageRussian(t *testing.T) {
	text := "Военные силы начали наступление, и правительство ответило артиллерийским огнем на границе страны."
	if got := DetectLanguage(text); got != "ru" {
		t.Errorf("DetectLanguage(russian) = %q, want ru", got)
	}
}
