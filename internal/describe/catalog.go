package describe

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
)

// Message keys. Every key ending in noText has no label argument.
const (
	keyDropdownClicked = "dropdownClicked"
	keyOptionClicked   = "optionClicked"
	keyButtonClicked   = "buttonClicked"
	keyLinkClicked     = "linkClicked"
	keyCheckboxClicked = "checkboxClicked"
	keyRadioSelected   = "radioSelected"
	keyTabClicked      = "tabClicked"
	keyFieldClicked    = "fieldClicked"
	keyImageClicked    = "imageClicked"
	keyMenuItemClicked = "menuItemClicked"
	keyElementClicked  = "elementClicked"
	keyClickedGeneric  = "elementClickedGeneric"
	keyDblClicked      = "elementDblClicked"
	keyDblGeneric      = "elementDblClickedGeneric"
	keyInputTyped      = "inputTyped"
	keyInputCleared    = "inputCleared"
	keySelectChanged   = "selectChanged"
	keyChecked         = "checked"
	keyUnchecked       = "unchecked"
	keyFieldChanged    = "fieldChanged"
	keySubmittedWith   = "formSubmittedWith"
	keySubmitted       = "formSubmitted"
	keyKeyPressed      = "keyPressed"
	keyRightClicked    = "rightClicked"
	keyRightGeneric    = "rightClickedGeneric"
	keyGenericAction   = "genericAction"
	noText             = "NoText"
)

var messages = map[language.Tag]map[string]string{
	language.English: {
		keyDropdownClicked:          `Opened the "%[1]s" dropdown`,
		keyDropdownClicked + noText: "Opened a dropdown",
		keyOptionClicked:            `Selected the "%[1]s" option`,
		keyOptionClicked + noText:   "Selected an option",
		keyButtonClicked:            `Clicked the "%[1]s" button`,
		keyButtonClicked + noText:   "Clicked a button",
		keyLinkClicked:              `Clicked the "%[1]s" link`,
		keyLinkClicked + noText:     "Clicked a link",
		keyCheckboxClicked:          `Clicked the "%[1]s" checkbox`,
		keyCheckboxClicked + noText: "Clicked a checkbox",
		keyRadioSelected:            `Selected the "%[1]s" radio button`,
		keyRadioSelected + noText:   "Selected a radio button",
		keyTabClicked:               `Switched to the "%[1]s" tab`,
		keyTabClicked + noText:      "Switched tab",
		keyFieldClicked:             `Clicked the "%[1]s" field`,
		keyFieldClicked + noText:    "Clicked a text field",
		keyImageClicked:             `Clicked the "%[1]s" image`,
		keyImageClicked + noText:    "Clicked an image",
		keyMenuItemClicked:          `Clicked the "%[1]s" menu item`,
		keyMenuItemClicked + noText: "Clicked a menu item",
		keyElementClicked:           `Clicked "%[1]s"`,
		keyClickedGeneric:           "Clicked a %[1]s element",
		keyDblClicked:               `Double-clicked "%[1]s"`,
		keyDblGeneric:               "Double-clicked a %[1]s element",
		keyInputTyped:               `Typed "%[2]s" into the "%[1]s" field`,
		keyInputCleared:             `Cleared the "%[1]s" field`,
		keySelectChanged:            `Selected "%[2]s" in "%[1]s"`,
		keyChecked:                  `Checked "%[1]s"`,
		keyUnchecked:                `Unchecked "%[1]s"`,
		keyFieldChanged:             `Changed "%[1]s"`,
		keySubmittedWith:            `Submitted the "%[1]s" form`,
		keySubmitted:                "Submitted the form",
		keyKeyPressed:               "Pressed %[1]s",
		keyRightClicked:             `Right-clicked "%[1]s"`,
		keyRightGeneric:             "Right-clicked a %[1]s element",
		keyGenericAction:            "Performed %[1]s",
	},
	language.Turkish: {
		keyDropdownClicked:          `"%[1]s" açılır listesi açıldı`,
		keyDropdownClicked + noText: "Açılır liste açıldı",
		keyOptionClicked:            `"%[1]s" seçeneği seçildi`,
		keyOptionClicked + noText:   "Bir seçenek seçildi",
		keyButtonClicked:            `"%[1]s" butonuna tıklandı`,
		keyButtonClicked + noText:   "Butona tıklandı",
		keyLinkClicked:              `"%[1]s" bağlantısına tıklandı`,
		keyLinkClicked + noText:     "Bağlantıya tıklandı",
		keyCheckboxClicked:          `"%[1]s" onay kutusuna tıklandı`,
		keyCheckboxClicked + noText: "Onay kutusuna tıklandı",
		keyRadioSelected:            `"%[1]s" radyo butonu seçildi`,
		keyRadioSelected + noText:   "Radyo butonu seçildi",
		keyTabClicked:               `"%[1]s" sekmesine geçildi`,
		keyTabClicked + noText:      "Sekmeye geçildi",
		keyFieldClicked:             `"%[1]s" alanına tıklandı`,
		keyFieldClicked + noText:    "Metin alanına tıklandı",
		keyImageClicked:             `"%[1]s" görseline tıklandı`,
		keyImageClicked + noText:    "Görsele tıklandı",
		keyMenuItemClicked:          `"%[1]s" menü öğesine tıklandı`,
		keyMenuItemClicked + noText: "Menü öğesine tıklandı",
		keyElementClicked:           `"%[1]s" öğesine tıklandı`,
		keyClickedGeneric:           "%[1]s öğesine tıklandı",
		keyDblClicked:               `"%[1]s" öğesine çift tıklandı`,
		keyDblGeneric:               "%[1]s öğesine çift tıklandı",
		keyInputTyped:               `"%[1]s" alanına "%[2]s" yazıldı`,
		keyInputCleared:             `"%[1]s" alanı temizlendi`,
		keySelectChanged:            `"%[1]s" listesinden "%[2]s" seçildi`,
		keyChecked:                  `"%[1]s" işaretlendi`,
		keyUnchecked:                `"%[1]s" işareti kaldırıldı`,
		keyFieldChanged:             `"%[1]s" değiştirildi`,
		keySubmittedWith:            `"%[1]s" formu gönderildi`,
		keySubmitted:                "Form gönderildi",
		keyKeyPressed:               "%[1]s tuşuna basıldı",
		keyRightClicked:             `"%[1]s" öğesine sağ tıklandı`,
		keyRightGeneric:             "%[1]s öğesine sağ tıklandı",
		keyGenericAction:            "%[1]s işlemi yapıldı",
	},
}

func newCatalog() *catalog.Builder {
	cat := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range messages {
		for key, msg := range msgs {
			if err := cat.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
	return cat
}
