package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Gerri254/chainctl/internal/forms"
	"github.com/Gerri254/chainctl/internal/pages"
	"github.com/Gerri254/chainctl/internal/ui"
)

var (
	vendorName    string
	vendorRegNo   string
	vendorCats    []string
	vendorEmail   string
	vendorPhone   string
	vendorAddress string
)

var vendorsCmd = &cobra.Command{
	Use:   "vendors",
	Short: "Browse and register procurement vendors",
}

var vendorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered vendors",
	RunE:  runVendorsList,
}

var vendorsRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a vendor profile",
	RunE:  runVendorsRegister,
}

func init() {
	vendorsRegisterCmd.Flags().StringVar(&vendorName, "name", "", "vendor name")
	vendorsRegisterCmd.Flags().StringVar(&vendorRegNo, "registration", "", "business registration number")
	vendorsRegisterCmd.Flags().StringSliceVar(&vendorCats, "category", nil, "procurement category (repeatable)")
	vendorsRegisterCmd.Flags().StringVar(&vendorEmail, "email", "", "contact email")
	vendorsRegisterCmd.Flags().StringVar(&vendorPhone, "phone", "", "contact phone")
	vendorsRegisterCmd.Flags().StringVar(&vendorAddress, "address", "", "physical address")

	vendorsCmd.AddCommand(vendorsListCmd, vendorsRegisterCmd)
	rootCmd.AddCommand(vendorsCmd)
}

func runVendorsList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	p := pages.NewVendorDirectory(a.env())
	defer p.Close()

	view, err := p.Load(ctx)
	if err != nil {
		return friendly(err)
	}
	fmt.Println(view.Render())

	if len(view.Top) > 0 {
		top := ui.NewTable("Top Vendors by Awarded Value", "NAME", "CONTRACTS", "VALUE")
		for _, v := range view.Top {
			top.AddRow(v.Name, fmt.Sprintf("%d", v.AwardedContracts), fmt.Sprintf("%.0f", v.TotalAwardedValue))
		}
		fmt.Println(top.View())
	}
	return nil
}

func runVendorsRegister(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	p := pages.NewVendorDirectory(a.env())
	defer p.Close()

	form := forms.VendorRegistration{
		Name:           vendorName,
		RegistrationNo: vendorRegNo,
		Categories:     vendorCats,
		ContactEmail:   vendorEmail,
		ContactPhone:   vendorPhone,
		Address:        vendorAddress,
	}
	view, fieldErrs, err := p.Register(ctx, form)
	if !fieldErrs.Valid() {
		printFieldErrors(fieldErrs)
		if err != nil {
			return fmt.Errorf("registration rejected")
		}
		return fmt.Errorf("registration form is incomplete")
	}
	if err != nil {
		a.printFeed()
		return friendly(err)
	}
	a.printFeed()
	fmt.Println(view.Render())
	return nil
}
